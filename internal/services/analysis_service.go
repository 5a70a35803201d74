package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/videoinsight/internal/models"
	"github.com/yoockh/videoinsight/internal/providers/gemini"
	"github.com/yoockh/videoinsight/internal/storage"
	"github.com/yoockh/videoinsight/internal/utils"
)

type State string

const (
	StateEmpty    State = "empty"
	StateUploaded State = "uploaded"
	StateAnalyzed State = "analyzed"
	StateChatting State = "chatting"
)

const defaultAnalysisPrompt = "Analyze this video in detail. Describe the setting, the people and objects " +
	"involved, the key events in the order they happen, and any relevant spoken or on-screen text."

const chatAnswerInstruction = "Answer directly based on the content of the video."

// MediaRef selects which protocol a chat turn uses: a stored local file is
// sent inline, a remote URI is referenced through the file API.
type MediaRef struct {
	LocalID  string
	URI      string
	MimeType string
}

type AnalysisService interface {
	// Upload stores a new video and resets the session to a fresh Uploaded
	// state, discarding any prior analysis and chat log.
	Upload(ctx context.Context, r io.Reader, size int64, mimeType, originalName string) (*models.MediaAsset, error)
	// AnalyzeInline runs the synchronous inline-bytes protocol against a
	// stored video. An empty prompt falls back to the default analysis prompt.
	AnalyzeInline(ctx context.Context, localID, prompt string) (*models.AnalysisResult, error)
	// AnalyzeRemote runs the upload-poll-generate protocol end to end,
	// deleting the remote handle best-effort once the analysis is produced.
	AnalyzeRemote(ctx context.Context, localID string) (*models.AnalysisResult, error)
	// Chat answers one question against the referenced video, threading the
	// reduced history through to the provider.
	Chat(ctx context.Context, ref MediaRef, question string, prior []models.ChatMessage) (*models.ChatTurnResult, error)
}

// analysisService holds the single process-wide session. The mutex guards the
// session fields only; provider calls run unlocked, so overlapping analyze or
// chat requests race last-write-wins, same as overlapping requests would
// against any one asset.
type analysisService struct {
	store storage.Store
	ai    gemini.Provider
	log   *logrus.Logger

	mu       sync.Mutex
	state    State
	asset    *models.MediaAsset
	analysis *models.AnalysisResult
	messages []models.ChatMessage
}

func NewAnalysisService(store storage.Store, ai gemini.Provider, log *logrus.Logger) AnalysisService {
	return &analysisService{store: store, ai: ai, log: log, state: StateEmpty}
}

func (s *analysisService) Upload(ctx context.Context, r io.Reader, size int64, mimeType, originalName string) (*models.MediaAsset, error) {
	asset, err := s.store.Save(ctx, r, size, mimeType, originalName)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.state = StateUploaded
	s.asset = asset
	s.analysis = nil
	s.messages = nil
	s.mu.Unlock()

	return asset, nil
}

func (s *analysisService) AnalyzeInline(ctx context.Context, localID, prompt string) (*models.AnalysisResult, error) {
	const op = "AnalysisService.AnalyzeInline"

	if localID == "" {
		return nil, utils.E(utils.CodeValidation, op, "filename is required", nil)
	}
	if strings.TrimSpace(prompt) == "" {
		prompt = defaultAnalysisPrompt
	}

	media, err := s.store.ReadFile(localID)
	if err != nil {
		return nil, err
	}

	text, err := s.ai.GenerateInline(ctx, media, s.mimeFor(localID), prompt, nil)
	if err != nil {
		return nil, err
	}

	res := &models.AnalysisResult{
		Text:       text,
		ProducedAt: time.Now().UTC(),
		Kind:       models.KindInitialAnalysis,
	}
	s.commitAnalysis(res)
	return res, nil
}

func (s *analysisService) AnalyzeRemote(ctx context.Context, localID string) (*models.AnalysisResult, error) {
	const op = "AnalysisService.AnalyzeRemote"

	if localID == "" {
		return nil, utils.E(utils.CodeValidation, op, "videoPath is required", nil)
	}

	rc, size, err := s.store.Open(localID)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	mime := s.mimeFor(localID)
	handle, err := s.ai.UploadFile(ctx, rc, size, mime, localID)
	if err != nil {
		return nil, err
	}

	active, err := s.ai.WaitForActive(ctx, handle)
	if err != nil {
		return nil, err
	}

	text, err := s.ai.GenerateWithFile(ctx, active.URI, mime, defaultAnalysisPrompt, nil)
	if err != nil {
		return nil, err
	}

	// Cleanup is best-effort: the analysis is already produced.
	if derr := s.ai.DeleteFile(ctx, active.Name); derr != nil {
		s.log.WithError(derr).WithField("file", active.Name).Warn("failed to delete remote video handle")
	}

	res := &models.AnalysisResult{
		Text:       text,
		SourceURI:  active.URI,
		ProducedAt: time.Now().UTC(),
		Kind:       models.KindInitialAnalysis,
	}
	s.commitAnalysis(res)
	return res, nil
}

func (s *analysisService) Chat(ctx context.Context, ref MediaRef, question string, prior []models.ChatMessage) (*models.ChatTurnResult, error) {
	const op = "AnalysisService.Chat"

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, utils.E(utils.CodeValidation, op, "question is required", nil)
	}

	// Callers that name no video fall back to the session's own asset.
	if ref.LocalID == "" && ref.URI == "" {
		s.mu.Lock()
		if s.asset != nil {
			ref.LocalID = s.asset.LocalID
			ref.MimeType = s.asset.MimeType
		}
		s.mu.Unlock()
	}
	if ref.LocalID == "" && ref.URI == "" {
		return nil, utils.E(utils.CodeNotFound, op, "no video to chat about: upload one first", nil)
	}

	history := ReduceHistory(prior)
	prompt := question + "\n\n" + chatAnswerInstruction

	var (
		text string
		err  error
	)
	if ref.LocalID != "" {
		var media []byte
		media, err = s.store.ReadFile(ref.LocalID)
		if err != nil {
			return nil, err
		}
		mime := ref.MimeType
		if mime == "" {
			mime = s.mimeFor(ref.LocalID)
		}
		text, err = s.ai.GenerateInline(ctx, media, mime, prompt, history)
	} else {
		mime := ref.MimeType
		if mime == "" {
			mime = "video/mp4"
		}
		text, err = s.ai.GenerateWithFile(ctx, ref.URI, mime, prompt, history)
	}
	if err != nil {
		// The session log stays untouched on failure.
		return nil, err
	}

	now := time.Now().UTC()
	res := &models.ChatTurnResult{Text: text, ProducedAt: now, Kind: models.KindChatResponse}

	s.mu.Lock()
	s.messages = append(s.messages,
		models.ChatMessage{Text: question, Sender: models.SenderUser, ProducedAt: now},
		models.ChatMessage{Text: text, Sender: models.SenderAI, ProducedAt: now},
	)
	s.state = StateChatting
	s.mu.Unlock()

	return res, nil
}

func (s *analysisService) commitAnalysis(res *models.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analysis = res
	s.state = StateAnalyzed
	s.messages = append(s.messages, models.ChatMessage{
		Text:       res.Text,
		Sender:     models.SenderAI,
		ProducedAt: res.ProducedAt,
	})
}

// mimeFor prefers the mimetype declared at upload time; files addressed
// outside the current session fall back to their extension.
func (s *analysisService) mimeFor(localID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.asset != nil && s.asset.LocalID == localID {
		return s.asset.MimeType
	}
	return storage.MimeForName(localID)
}
