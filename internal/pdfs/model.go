package pdfs

import "time"

// Record is everything kept about one uploaded PDF.
type Record struct {
	ID          string    `json:"id" msgpack:"id"`
	FileName    string    `json:"fileName" msgpack:"file_name"`
	TextContent string    `json:"textContent" msgpack:"text_content"`
	NumPages    int       `json:"numPages" msgpack:"num_pages"`
	UploadTime  time.Time `json:"uploadTime" msgpack:"upload_time"`
	FilePath    string    `json:"filePath" msgpack:"file_path"`
}

// ChatResult is the answer to one question about a document.
type ChatResult struct {
	Response       string
	PageReferences []int
	Timestamp      time.Time
}
