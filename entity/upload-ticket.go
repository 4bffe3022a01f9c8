package entity

// UploadTicket is what a client needs to push one image to object
// storage and read it back: a short-lived presigned PUT URL, the
// generated object key, and a presigned GET URL for convenience.
type UploadTicket struct {
	UploadUrl string `json:"upload_url"`
	Key       string `json:"key"`
	Url       string `json:"url"`
}
