package article

// Article is the normalized form of a Guardian search result. The JSON
// field names are part of the queue message contract: downstream consumers
// see exactly these keys.
type Article struct {
	WebPublicationDate string `json:"webPublicationDate" bson:"webPublicationDate"`
	WebTitle           string `json:"webTitle" bson:"webTitle"`
	WebURL             string `json:"webUrl" bson:"webUrl"`
	ContentPreview     string `json:"content_preview" bson:"contentPreview"`
}
