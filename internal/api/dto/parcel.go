package dto

// Write acknowledgements keep the field names clients already read from
// the document store's driver results.
type InsertResponse struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

type UpdateResponse struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

type DeleteResponse struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

type MarkPaidResponse struct {
	Message      string         `json:"message"`
	UpdateParcel UpdateResponse `json:"updateParcel"`
}
