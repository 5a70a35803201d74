// Package gemini is a REST client for the Gemini Developer API, covering the
// two analysis protocols the server exposes: inline-media generateContent and
// the file-upload/poll/reference flow.
package gemini

import (
	"context"
	"io"
)

// Provider is the narrow surface the services consume.
type Provider interface {
	// GenerateInline sends media bytes inside the generation request itself.
	GenerateInline(ctx context.Context, media []byte, mimeType, prompt string, history []Content) (string, error)
	// GenerateWithFile references a previously uploaded file by URI.
	GenerateWithFile(ctx context.Context, fileURI, mimeType, prompt string, history []Content) (string, error)
	// UploadFile submits raw bytes to the file endpoint; the returned handle
	// usually starts in state PROCESSING.
	UploadFile(ctx context.Context, r io.Reader, size int64, mimeType, displayName string) (*File, error)
	// WaitForActive polls the handle until it becomes ACTIVE or fails.
	WaitForActive(ctx context.Context, f *File) (*File, error)
	// DeleteFile removes a remote handle. Callers treat failure as log-only.
	DeleteFile(ctx context.Context, name string) error
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
	FileData   *FileData   `json:"fileData,omitempty"`
}

// InlineData carries base64-encoded media inside the request body.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// FileData references media uploaded through the file API.
type FileData struct {
	MimeType string `json:"mimeType,omitempty"`
	FileURI  string `json:"fileUri"`
}

// GenerationConfig is passed through to the provider verbatim; the client
// neither validates nor clamps the values.
type GenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	TopK            *int     `json:"topK,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

// FileState is the processing state of an uploaded file.
type FileState string

const (
	FileStateUnspecified FileState = "STATE_UNSPECIFIED"
	FileStateProcessing  FileState = "PROCESSING"
	FileStateActive      FileState = "ACTIVE"
	FileStateFailed      FileState = "FAILED"
)

// File is the provider-side representation of an uploaded video.
type File struct {
	Name           string     `json:"name"`
	DisplayName    string     `json:"displayName,omitempty"`
	MimeType       string     `json:"mimeType"`
	SizeBytes      string     `json:"sizeBytes,omitempty"`
	CreateTime     string     `json:"createTime,omitempty"`
	UpdateTime     string     `json:"updateTime,omitempty"`
	ExpirationTime string     `json:"expirationTime,omitempty"`
	URI            string     `json:"uri"`
	State          FileState  `json:"state"`
	Error          *FileError `json:"error,omitempty"`
}

type FileError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type generateRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      Content `json:"content"`
		FinishReason string  `json:"finishReason,omitempty"`
	} `json:"candidates"`
}

// fileUploadMetadata is the JSON body initiating a resumable upload.
type fileUploadMetadata struct {
	File struct {
		DisplayName string `json:"display_name,omitempty"`
	} `json:"file"`
}

type fileUploadResponse struct {
	File File `json:"file"`
}
