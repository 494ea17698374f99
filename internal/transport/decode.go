package transport

import (
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http"

	"github.com/citemap/citemap/pkg/errors"
	"github.com/citemap/citemap/pkg/logging"
)

// ReadBody drains and closes a response body, converting non-200 statuses
// into APIErrors attributed to the given source.
func ReadBody(resp *http.Response, source string) ([]byte, error) {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewNetworkError(source, resp.Request.URL.String(), err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &errors.APIError{
			Source:     source,
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   resp.Request.URL.String(),
		}
	}

	return body, nil
}

// DecodeJSON decodes a JSON response into the target structure.
func DecodeJSON(resp *http.Response, source string, target any) error {
	body, err := ReadBody(resp, source)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapFormat(source, "json", err)
	}
	return nil
}

// DecodeXML decodes an XML response into the target structure.
func DecodeXML(resp *http.Response, source string, target any) error {
	body, err := ReadBody(resp, source)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(body, target); err != nil {
		return errors.WrapFormat(source, "xml", err)
	}
	return nil
}
