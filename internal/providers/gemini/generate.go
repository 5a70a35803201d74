package gemini

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/yoockh/videoinsight/internal/utils"
)

func (c *Client) GenerateInline(ctx context.Context, media []byte, mimeType, prompt string, history []Content) (string, error) {
	const op = "gemini.GenerateInline"

	parts := []Part{
		{InlineData: &InlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(media),
		}},
		{Text: prompt},
	}
	return c.generate(ctx, op, withUserTurn(history, parts))
}

func (c *Client) GenerateWithFile(ctx context.Context, fileURI, mimeType, prompt string, history []Content) (string, error) {
	const op = "gemini.GenerateWithFile"

	parts := []Part{
		{FileData: &FileData{MimeType: mimeType, FileURI: fileURI}},
		{Text: prompt},
	}
	return c.generate(ctx, op, withUserTurn(history, parts))
}

func withUserTurn(history []Content, parts []Part) []Content {
	contents := make([]Content, 0, len(history)+1)
	contents = append(contents, history...)
	return append(contents, Content{Role: "user", Parts: parts})
}

func (c *Client) generate(ctx context.Context, op string, contents []Content) (string, error) {
	if err := c.ensureKey(op); err != nil {
		return "", err
	}

	buf, err := encodeJSON(generateRequest{Contents: contents, GenerationConfig: c.gen})
	if err != nil {
		return "", utils.E(utils.CodeProvider, op, "failed to encode generate request", err)
	}

	url := c.baseURL + "/v1beta/models/" + c.model + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return "", utils.E(utils.CodeProvider, op, "failed to build generate request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out generateResponse
	if err := c.doJSON(req, op, &out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 {
		return "", utils.E(utils.CodeProvider, op, "gemini returned no candidates", nil)
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", utils.E(utils.CodeProvider, op, "gemini returned an empty response", nil)
	}
	return text, nil
}
