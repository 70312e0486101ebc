package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/copperline/imagesession/internal/analysis"
	"github.com/copperline/imagesession/internal/codec"
	"github.com/copperline/imagesession/internal/history"
	"github.com/copperline/imagesession/internal/params"
	"github.com/copperline/imagesession/internal/session"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "session_open", "session_rotate").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var call ToolCallParams
	if err := json.Unmarshal(req.Params, &call); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(call.Name, call.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Session Lifecycle
	case "session_open":
		return s.handleSessionOpen(args)
	case "session_state":
		return s.handleSessionState(args)

	// Live Preview And Commit
	case "session_preview_tone":
		return s.handleSessionPreviewTone(args)
	case "session_commit_tone":
		return s.handleSessionCommitTone(args)

	// Discrete Edits
	case "session_rotate":
		return s.handleSessionRotate(args)
	case "session_set_crop_ratio":
		return s.handleSessionSetCropRatio(args)

	// History
	case "session_undo":
		return s.handleSessionUndo(args)
	case "session_redo":
		return s.handleSessionRedo(args)
	case "session_reset":
		return s.handleSessionReset(args)

	// Autosave
	case "session_restore":
		return s.handleSessionRestore(args)

	// Output
	case "session_apply":
		return s.handleSessionApply(args)
	case "session_cancel":
		return s.handleSessionCancel(args)

	// Analysis
	case "image_analyze":
		return s.handleImageAnalyze(args)
	case "image_palette":
		return s.handleImagePalette(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// sessionView is the state summary most session tools return.
type sessionView struct {
	SessionID     string                `json:"session_id"`
	State         string                `json:"state"`
	Live          params.EditParameters `json:"live"`
	HistoryLength int                   `json:"history_length"`
	HistoryIndex  int                   `json:"history_index"`
	CanUndo       bool                  `json:"can_undo"`
	CanRedo       bool                  `json:"can_redo"`
	PreviewWidth  int                   `json:"preview_width"`
	PreviewHeight int                   `json:"preview_height"`
}

func viewOf(id string, sess *session.Session) sessionView {
	w, h := sess.PreviewDimensions()
	return sessionView{
		SessionID:     id,
		State:         sess.State().String(),
		Live:          sess.Live(),
		HistoryLength: sess.HistoryLen(),
		HistoryIndex:  sess.HistoryIndex(),
		CanUndo:       sess.CanUndo(),
		CanRedo:       sess.CanRedo(),
		PreviewWidth:  w,
		PreviewHeight: h,
	}
}

// === Session Lifecycle Handlers ===

type sessionOpenArgs struct {
	ImageBase64 string `json:"image_base64"`
}

type sessionOpenResult struct {
	sessionView
	Source           codec.ImageInfo `json:"source"`
	Signature        string          `json:"signature"`
	RestoreAvailable bool            `json:"restore_available"`
	RestoreSavedAt   *time.Time      `json:"restore_saved_at,omitempty"`
}

func (s *Server) handleSessionOpen(args json.RawMessage) (interface{}, error) {
	var a sessionOpenArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	source, err := base64.StdEncoding.DecodeString(a.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("image_base64 did not decode: %w", err)
	}

	sess, err := session.New(context.Background(), source, s.store,
		session.WithLogger(s.logger),
		session.WithQuietPeriod(s.quiet))
	if err != nil {
		return nil, err
	}
	id := s.register(sess)

	res := sessionOpenResult{
		sessionView: viewOf(id, sess),
		Source:      sess.SourceInfo(),
		Signature:   sess.Signature(),
	}
	if offer := sess.RestoreOffer(); offer != nil {
		res.RestoreAvailable = true
		savedAt := offer.SavedAt
		res.RestoreSavedAt = &savedAt
	}
	return res, nil
}

type sessionIDArgs struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleSessionState(args json.RawMessage) (interface{}, error) {
	id, sess, err := s.sessionFor(args)
	if err != nil {
		return nil, err
	}
	return viewOf(id, sess), nil
}

func (s *Server) sessionFor(args json.RawMessage) (string, *session.Session, error) {
	var a sessionIDArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", nil, err
	}
	sess, err := s.lookup(a.SessionID)
	if err != nil {
		return "", nil, err
	}
	return a.SessionID, sess, nil
}

// === Live Preview And Commit Handlers ===

type previewToneArgs struct {
	SessionID  string `json:"session_id"`
	Brightness *int   `json:"brightness,omitempty"`
	Contrast   *int   `json:"contrast,omitempty"`
}

func (s *Server) handleSessionPreviewTone(args json.RawMessage) (interface{}, error) {
	var a previewToneArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sess, err := s.lookup(a.SessionID)
	if err != nil {
		return nil, err
	}

	if a.Brightness != nil {
		if err := sess.PreviewBrightness(*a.Brightness); err != nil {
			return nil, err
		}
	}
	if a.Contrast != nil {
		if err := sess.PreviewContrast(*a.Contrast); err != nil {
			return nil, err
		}
	}
	return viewOf(a.SessionID, sess), nil
}

func (s *Server) handleSessionCommitTone(args json.RawMessage) (interface{}, error) {
	id, sess, err := s.sessionFor(args)
	if err != nil {
		return nil, err
	}
	// One commit records the whole live state, both sliders included.
	if err := sess.CommitBrightness(); err != nil {
		return nil, err
	}
	return viewOf(id, sess), nil
}

// === Discrete Edit Handlers ===

func (s *Server) handleSessionRotate(args json.RawMessage) (interface{}, error) {
	id, sess, err := s.sessionFor(args)
	if err != nil {
		return nil, err
	}
	if _, err := sess.Rotate(); err != nil {
		return nil, err
	}
	return viewOf(id, sess), nil
}

type setCropRatioArgs struct {
	SessionID string `json:"session_id"`
	Ratio     string `json:"ratio"`
}

func (s *Server) handleSessionSetCropRatio(args json.RawMessage) (interface{}, error) {
	var a setCropRatioArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sess, err := s.lookup(a.SessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.SetCropRatio(params.CropRatio(a.Ratio)); err != nil {
		return nil, err
	}
	return viewOf(a.SessionID, sess), nil
}

// === History Handlers ===

// stepResult reports whether a history step happened. A step at the
// boundary is not an error, just changed=false.
type stepResult struct {
	sessionView
	Changed bool `json:"changed"`
}

func (s *Server) handleSessionUndo(args json.RawMessage) (interface{}, error) {
	return s.stepHistory(args, (*session.Session).Undo)
}

func (s *Server) handleSessionRedo(args json.RawMessage) (interface{}, error) {
	return s.stepHistory(args, (*session.Session).Redo)
}

func (s *Server) stepHistory(args json.RawMessage, move func(*session.Session) (params.EditParameters, error)) (interface{}, error) {
	id, sess, err := s.sessionFor(args)
	if err != nil {
		return nil, err
	}

	changed := true
	if _, err := move(sess); err != nil {
		if !errors.Is(err, history.ErrNoOp) {
			return nil, err
		}
		changed = false
	}
	return stepResult{sessionView: viewOf(id, sess), Changed: changed}, nil
}

func (s *Server) handleSessionReset(args json.RawMessage) (interface{}, error) {
	id, sess, err := s.sessionFor(args)
	if err != nil {
		return nil, err
	}
	if err := sess.Reset(); err != nil {
		return nil, err
	}
	return viewOf(id, sess), nil
}

// === Autosave Handlers ===

func (s *Server) handleSessionRestore(args json.RawMessage) (interface{}, error) {
	id, sess, err := s.sessionFor(args)
	if err != nil {
		return nil, err
	}
	if err := sess.RestoreFromAutosave(); err != nil {
		return nil, err
	}
	return viewOf(id, sess), nil
}

// === Output Handlers ===

type sessionApplyArgs struct {
	SessionID string `json:"session_id"`
	Format    string `json:"format"`
}

type applyResult struct {
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// applyFormats maps the tool's format names to codec MIME types.
var applyFormats = map[string]string{
	"":     codec.MIMEPNG,
	"png":  codec.MIMEPNG,
	"jpeg": codec.MIMEJPEG,
	"qoi":  codec.MIMEQOI,
}

func (s *Server) handleSessionApply(args json.RawMessage) (interface{}, error) {
	var a sessionApplyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sess, err := s.lookup(a.SessionID)
	if err != nil {
		return nil, err
	}
	id := a.SessionID

	mime, ok := applyFormats[a.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported output format %q (png, jpeg, or qoi)", a.Format)
	}

	out, err := sess.Apply(context.Background(), mime)
	if err != nil {
		return nil, err
	}
	s.drop(id)

	info, err := codec.DecodeInfo(out)
	if err != nil {
		return nil, err
	}
	return applyResult{
		ImageBase64: base64.StdEncoding.EncodeToString(out),
		MimeType:    info.MIME,
		Width:       info.Width,
		Height:      info.Height,
	}, nil
}

func (s *Server) handleSessionCancel(args json.RawMessage) (interface{}, error) {
	id, sess, err := s.sessionFor(args)
	if err != nil {
		return nil, err
	}
	if err := sess.Cancel(); err != nil {
		return nil, err
	}
	s.drop(id)
	return map[string]interface{}{"cancelled": true}, nil
}

// === Analysis Handlers ===

type imageAnalyzeArgs struct {
	ImageBase64 string `json:"image_base64"`
	Instruction string `json:"instruction"`
}

func (s *Server) handleImageAnalyze(args json.RawMessage) (interface{}, error) {
	if s.analyzer == nil {
		return nil, fmt.Errorf("image analysis is not configured (no API key)")
	}

	var a imageAnalyzeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	blob, err := base64.StdEncoding.DecodeString(a.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("image_base64 did not decode: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()
	return s.analyzer.Analyze(ctx, blob, codec.SniffMIME(blob), a.Instruction)
}

type imagePaletteArgs struct {
	ImageBase64 string `json:"image_base64"`
	Count       int    `json:"count"`
}

type paletteResult struct {
	Colors []analysis.PaletteEntry `json:"colors"`
}

func (s *Server) handleImagePalette(args json.RawMessage) (interface{}, error) {
	var a imagePaletteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 5
	}
	blob, err := base64.StdEncoding.DecodeString(a.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("image_base64 did not decode: %w", err)
	}

	img, _, err := codec.Decode(blob)
	if err != nil {
		return nil, err
	}
	return paletteResult{Colors: analysis.Palette(img, a.Count)}, nil
}
