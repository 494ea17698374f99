package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrySetGetDelete(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, 0, reg.Len())

	reg.Set(&fakeSource{id: PubMedID})
	reg.Set(&fakeSource{id: ArXivID})

	src, ok := reg.Get(PubMedID)
	require.True(t, ok)
	assert.Equal(t, PubMedID, src.ID())

	_, ok = reg.Get(WoSID)
	assert.False(t, ok)

	reg.Delete(PubMedID)
	assert.Equal(t, 1, reg.Len())
	_, ok = reg.Get(PubMedID)
	assert.False(t, ok)
}

func TestRegistryOrderPreserved(t *testing.T) {
	reg := NewRegistry()
	reg.Set(&fakeSource{id: BioRxivID})
	reg.Set(&fakeSource{id: PubMedID})
	reg.Set(&fakeSource{id: ArXivID})

	assert.Equal(t, []ID{BioRxivID, PubMedID, ArXivID}, reg.IDs())

	// Re-registering keeps the original position.
	reg.Set(&fakeSource{id: PubMedID})
	assert.Equal(t, []ID{BioRxivID, PubMedID, ArXivID}, reg.IDs())

	list := reg.List()
	require.Len(t, list, 3)
	assert.Equal(t, BioRxivID, list[0].ID())
}

func TestRegistryFilter(t *testing.T) {
	reg := NewRegistry()
	reg.Set(&fakeSource{id: PubMedID})
	reg.Set(&fakeSource{id: ArXivID})

	matched, unknown := reg.Filter([]string{"pubmed", "unknown_src"})
	assert.Equal(t, []ID{PubMedID}, matched)
	assert.Equal(t, []string{"unknown_src"}, unknown)

	// Empty request selects everything.
	matched, unknown = reg.Filter(nil)
	assert.Equal(t, []ID{PubMedID, ArXivID}, matched)
	assert.Empty(t, unknown)
}

func TestIDIsValid(t *testing.T) {
	assert.True(t, PubMedID.IsValid())
	assert.True(t, SemanticScholarID.IsValid())
	assert.False(t, ID("scopus").IsValid())
}
