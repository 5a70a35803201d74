package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/videoinsight/internal/api/handlers"
	"github.com/yoockh/videoinsight/internal/api/middleware"
	"github.com/yoockh/videoinsight/internal/api/routes"
	"github.com/yoockh/videoinsight/internal/events"
	"github.com/yoockh/videoinsight/internal/providers/gemini"
	"github.com/yoockh/videoinsight/internal/services"
	"github.com/yoockh/videoinsight/internal/storage"
)

const testMaxUpload = int64(25 << 20)

type providerCall struct {
	uri      string
	mimeType string
	prompt   string
	history  []gemini.Content
	mediaLen int
}

// stubProvider stands in for the Gemini client behind the full router.
type stubProvider struct {
	mu sync.Mutex

	replyText   string
	generateErr error

	inlineCalls []providerCall
	fileCalls   []providerCall
	uploads     int
	waits       int
	deleted     []string
}

var _ gemini.Provider = (*stubProvider)(nil)

func (p *stubProvider) reply() string {
	if p.replyText == "" {
		return "A cat runs."
	}
	return p.replyText
}

func (p *stubProvider) GenerateInline(ctx context.Context, media []byte, mimeType, prompt string, history []gemini.Content) (string, error) {
	p.mu.Lock()
	p.inlineCalls = append(p.inlineCalls, providerCall{mimeType: mimeType, prompt: prompt, history: history, mediaLen: len(media)})
	p.mu.Unlock()
	if p.generateErr != nil {
		return "", p.generateErr
	}
	return p.reply(), nil
}

func (p *stubProvider) GenerateWithFile(ctx context.Context, fileURI, mimeType, prompt string, history []gemini.Content) (string, error) {
	p.mu.Lock()
	p.fileCalls = append(p.fileCalls, providerCall{uri: fileURI, mimeType: mimeType, prompt: prompt, history: history})
	p.mu.Unlock()
	if p.generateErr != nil {
		return "", p.generateErr
	}
	return p.reply(), nil
}

func (p *stubProvider) UploadFile(ctx context.Context, r io.Reader, size int64, mimeType, displayName string) (*gemini.File, error) {
	p.mu.Lock()
	p.uploads++
	p.mu.Unlock()
	_, _ = io.Copy(io.Discard, r)
	return &gemini.File{Name: "files/stub", URI: "https://files/stub", MimeType: mimeType, State: gemini.FileStateProcessing}, nil
}

func (p *stubProvider) WaitForActive(ctx context.Context, f *gemini.File) (*gemini.File, error) {
	p.mu.Lock()
	p.waits++
	p.mu.Unlock()
	out := *f
	out.State = gemini.FileStateActive
	return &out, nil
}

func (p *stubProvider) DeleteFile(ctx context.Context, name string) error {
	p.mu.Lock()
	p.deleted = append(p.deleted, name)
	p.mu.Unlock()
	return nil
}

type testEnv struct {
	router *gin.Engine
	store  *storage.LocalStore
	hub    *events.Hub
}

func setupServer(t *testing.T, ai gemini.Provider) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewLocalStore(t.TempDir(), testMaxUpload)
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)

	svc := services.NewAnalysisService(store, ai, log)
	hub := events.NewHub()

	r := gin.New()
	r.Use(middleware.MaxBodySize(testMaxUpload + 1<<20))
	routes.RegisterRoutes(r, routes.Deps{
		Video:      handlers.NewVideoHandler(svc, testMaxUpload),
		AI:         handlers.NewAIHandler(svc),
		WS:         handlers.NewWSHandler(hub, log, "http://localhost:5173"),
		UploadsDir: store.Dir(),
	})

	return &testEnv{router: r, store: store, hub: hub}
}

// multipartVideo builds an upload body whose file part declares the given
// mimetype, the way browsers do.
func multipartVideo(t *testing.T, filename, mimeType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="video"; filename=%q`, filename))
	hdr.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return body, mw.FormDataContentType()
}

func doRequest(t *testing.T, r *gin.Engine, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postJSON(t *testing.T, r *gin.Engine, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return doRequest(t, r, http.MethodPost, target, bytes.NewReader(b), "application/json")
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// uploadVideo drives a successful upload and returns the file envelope.
func uploadVideo(t *testing.T, env *testEnv, filename, mimeType string, payload []byte) map[string]any {
	t.Helper()
	body, ct := multipartVideo(t, filename, mimeType, payload)
	w := doRequest(t, env.router, http.MethodPost, "/api/video/upload", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decodeBody(t, w)
	require.Equal(t, true, out["success"])
	file, ok := out["file"].(map[string]any)
	require.True(t, ok)
	return file
}
