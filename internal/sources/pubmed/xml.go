package pubmed

// EFetch XML document structure, trimmed to the elements normalization reads.
// Reference: https://www.ncbi.nlm.nih.gov/books/NBK25499/#chapter4.EFetch

type articleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	MedlineCitation medlineCitation `xml:"MedlineCitation"`
	PubmedData      pubmedData      `xml:"PubmedData"`
}

type medlineCitation struct {
	PMID         string       `xml:"PMID"`
	Article      articleData  `xml:"Article"`
	MeshHeadings meshHeadings `xml:"MeshHeadingList"`
}

type articleData struct {
	Title            string         `xml:"ArticleTitle"`
	Abstract         abstractData   `xml:"Abstract"`
	Journal          journalData    `xml:"Journal"`
	AuthorList       authorList     `xml:"AuthorList"`
	Pagination       pagination     `xml:"Pagination"`
	ELocationIDs     []eLocationID  `xml:"ELocationID"`
	Language         []string       `xml:"Language"`
	PublicationTypes pubTypeList    `xml:"PublicationTypeList"`
}

type abstractData struct {
	Text []string `xml:"AbstractText"`
}

type journalData struct {
	Title           string       `xml:"Title"`
	ISOAbbreviation string       `xml:"ISOAbbreviation"`
	ISSN            []issnData   `xml:"ISSN"`
	JournalIssue    journalIssue `xml:"JournalIssue"`
}

type issnData struct {
	Type  string `xml:"IssnType,attr"`
	Value string `xml:",chardata"`
}

type journalIssue struct {
	Volume string `xml:"Volume"`
	Issue  string `xml:"Issue"`
}

type authorList struct {
	Authors []authorData `xml:"Author"`
}

type authorData struct {
	LastName     string             `xml:"LastName"`
	ForeName     string             `xml:"ForeName"`
	Initials     string             `xml:"Initials"`
	Affiliations []affiliationInfo  `xml:"AffiliationInfo"`
	Identifiers  []authorIdentifier `xml:"Identifier"`
}

type affiliationInfo struct {
	Affiliation string `xml:"Affiliation"`
}

type authorIdentifier struct {
	Source string `xml:"Source,attr"`
	Value  string `xml:",chardata"`
}

type pagination struct {
	MedlinePgn string `xml:"MedlinePgn"`
}

type eLocationID struct {
	Type  string `xml:"EIdType,attr"`
	Valid string `xml:"ValidYN,attr"`
	Value string `xml:",chardata"`
}

type pubTypeList struct {
	Types []pubType `xml:"PublicationType"`
}

type pubType struct {
	Name string `xml:",chardata"`
}

type meshHeadings struct {
	Headings []meshHeading `xml:"MeshHeading"`
}

type meshHeading struct {
	Descriptor meshDescriptor `xml:"DescriptorName"`
}

type meshDescriptor struct {
	MajorTopic string `xml:"MajorTopicYN,attr"`
	Name       string `xml:",chardata"`
}

type pubmedData struct {
	History    history       `xml:"History"`
	ArticleIDs articleIDList `xml:"ArticleIdList"`
}

type history struct {
	Dates []pubMedPubDate `xml:"PubMedPubDate"`
}

type pubMedPubDate struct {
	Status string `xml:"PubStatus,attr"`
	Year   string `xml:"Year"`
	Month  string `xml:"Month"`
	Day    string `xml:"Day"`
}

type articleIDList struct {
	IDs []articleID `xml:"ArticleId"`
}

type articleID struct {
	Type  string `xml:"IdType,attr"`
	Value string `xml:",chardata"`
}
