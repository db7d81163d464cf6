package guardian

import "encoding/json"

// SearchRequest captures one invocation's query. DateFrom is optional and
// omitted from the request when empty.
type SearchRequest struct {
	SearchTerm string
	DateFrom   string
}

type searchResponse struct {
	Response searchResult `json:"response"`
}

type searchResult struct {
	Results []RawArticle `json:"results"`
}

// RawArticle is the Guardian's own representation of a hit. The three
// required keys are pointers so a missing key is distinguishable from an
// empty value; Fields stays raw because the API does not guarantee its
// shape.
type RawArticle struct {
	WebPublicationDate *string         `json:"webPublicationDate"`
	WebTitle           *string         `json:"webTitle"`
	WebURL             *string         `json:"webUrl"`
	Fields             json.RawMessage `json:"fields"`
}
