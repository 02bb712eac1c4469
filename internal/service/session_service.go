package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/internal/auth"
	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/export"
	"github.com/mmynk/billsplit/internal/extract"
	"github.com/mmynk/billsplit/internal/metrics"
	"github.com/mmynk/billsplit/internal/middleware"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/session"
	"github.com/mmynk/billsplit/internal/storage"
	"github.com/mmynk/billsplit/pkg/api"
	"github.com/mmynk/billsplit/pkg/api/apiconnect"
)

// Ensure SessionService implements the Connect handler interface
var _ apiconnect.SessionServiceHandler = (*SessionService)(nil)

// SessionService implements the Connect SessionService.
type SessionService struct {
	sessions  *session.Manager
	tokens    *auth.JWTManager
	extractor extract.Extractor
	renderer  *export.Renderer
	metrics   *metrics.Metrics
}

// NewSessionService creates a SessionService. extractor may be nil, in which
// case ExtractItems reports Unavailable; m may be nil.
func NewSessionService(sessions *session.Manager, tokens *auth.JWTManager, extractor extract.Extractor, renderer *export.Renderer, m *metrics.Metrics) *SessionService {
	if renderer == nil {
		renderer = export.NewRenderer("")
	}
	return &SessionService{
		sessions:  sessions,
		tokens:    tokens,
		extractor: extractor,
		renderer:  renderer,
		metrics:   m,
	}
}

// sessionID returns the session the caller's token grants access to.
func sessionID(ctx context.Context) (string, error) {
	id := middleware.GetSessionID(ctx)
	if id == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return id, nil
}

// toConnectError maps domain errors onto Connect codes. Unexpected errors
// are logged and reported as Internal.
func toConnectError(op string, err error) error {
	var code connect.Code
	switch {
	case errors.Is(err, session.ErrDuplicateName):
		code = connect.CodeAlreadyExists
	case errors.Is(err, session.ErrNotFound), errors.Is(err, storage.ErrSessionNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, session.ErrIndexOutOfRange):
		code = connect.CodeOutOfRange
	case errors.Is(err, session.ErrEmptyName),
		errors.Is(err, session.ErrInvalidAmount),
		errors.Is(err, ErrValidationFailed),
		errors.Is(err, extract.ErrEmptyImage),
		errors.Is(err, extract.ErrUnsupportedType),
		errors.Is(err, extract.ErrImageTooLarge),
		errors.Is(err, extract.ErrNoJSON),
		errors.Is(err, extract.ErrNoItems):
		code = connect.CodeInvalidArgument
	case errors.Is(err, session.ErrAssignmentNotOpen),
		errors.Is(err, session.ErrAssignmentStarted),
		errors.Is(err, session.ErrNotFullyAssigned):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, extract.ErrNotConfigured):
		code = connect.CodeUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	default:
		slog.Error(op+" failed", "error", err)
		code = connect.CodeInternal
	}
	return connect.NewError(code, err)
}

// update applies fn to the caller's session and returns the new view.
func (s *SessionService) update(ctx context.Context, op string, fn func(*session.Session) error) (*api.Session, error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Update(ctx, id, fn)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	return toAPISession(sess), nil
}

// StartSession creates a new session and returns a token for it.
func (s *SessionService) StartSession(ctx context.Context, req *connect.Request[api.StartSessionRequest]) (*connect.Response[api.StartSessionResponse], error) {
	sess, err := s.sessions.Create(ctx)
	if err != nil {
		return nil, toConnectError("StartSession", err)
	}
	middleware.RecordSessionID(ctx, sess.ID())

	token, err := s.tokens.Generate(sess.ID())
	if err != nil {
		return nil, toConnectError("StartSession", err)
	}
	s.metrics.SessionStarted()

	return connect.NewResponse(&api.StartSessionResponse{
		Session:   toAPISession(sess),
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokens.TokenDuration()).Unix(),
	}), nil
}

// GetSession returns the caller's session.
func (s *SessionService) GetSession(ctx context.Context, req *connect.Request[api.GetSessionRequest]) (*connect.Response[api.GetSessionResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, toConnectError("GetSession", err)
	}
	return connect.NewResponse(&api.GetSessionResponse{Session: toAPISession(sess)}), nil
}

// SetItems replaces the ledger. Existing shares are discarded.
func (s *SessionService) SetItems(ctx context.Context, req *connect.Request[api.SetItemsRequest]) (*connect.Response[api.SetItemsResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError("SetItems", err)
	}

	items := make([]models.Item, len(req.Msg.Items))
	for i, in := range req.Msg.Items {
		items[i] = fromAPIItem(in)
	}

	view, err := s.update(ctx, "SetItems", func(sess *session.Session) error {
		sess.ReplaceItems(items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Ledger replaced", "session_id", view.ID, "items", len(items))
	return connect.NewResponse(&api.SetItemsResponse{Session: view}), nil
}

// ExtractItems reads the ledger from a receipt image and replaces the
// current one.
func (s *SessionService) ExtractItems(ctx context.Context, req *connect.Request[api.ExtractItemsRequest]) (*connect.Response[api.ExtractItemsResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError("ExtractItems", err)
	}
	if _, err := sessionID(ctx); err != nil {
		return nil, err
	}

	img := extract.Image{MIMEType: req.Msg.MimeType, Data: req.Msg.Image}
	if err := img.Validate(); err != nil {
		return nil, toConnectError("ExtractItems", err)
	}
	if s.extractor == nil {
		return nil, toConnectError("ExtractItems", extract.ErrNotConfigured)
	}

	result, err := s.extractor.Extract(ctx, img)
	if err != nil {
		s.metrics.Extraction(metrics.ExtractionFailed)
		if errors.Is(err, extract.ErrNotConfigured) || errors.Is(err, extract.ErrNoItems) ||
			errors.Is(err, extract.ErrNoJSON) || errors.Is(err, context.DeadlineExceeded) {
			return nil, toConnectError("ExtractItems", err)
		}
		slog.Error("ExtractItems failed", "error", err)
		return nil, connect.NewError(connect.CodeUnavailable, fmt.Errorf("extraction failed: %w", err))
	}
	if result.Truncated {
		s.metrics.Extraction(metrics.ExtractionTruncated)
	} else {
		s.metrics.Extraction(metrics.ExtractionOK)
	}

	view, err := s.update(ctx, "ExtractItems", func(sess *session.Session) error {
		sess.ReplaceItems(result.Items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.ExtractItemsResponse{Session: view, Truncated: result.Truncated}), nil
}

// UpdateItem edits one ledger line before assignment starts.
func (s *SessionService) UpdateItem(ctx context.Context, req *connect.Request[api.UpdateItemRequest]) (*connect.Response[api.UpdateItemResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError("UpdateItem", err)
	}

	var updated models.Item
	view, err := s.update(ctx, "UpdateItem", func(sess *session.Session) error {
		var err error
		updated, err = sess.UpdateItem(req.Msg.Index, fromAPIItem(req.Msg.Item))
		return err
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.UpdateItemResponse{Item: toAPIItem(updated), Session: view}), nil
}

// AddParticipant adds a person to the roster.
func (s *SessionService) AddParticipant(ctx context.Context, req *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError("AddParticipant", err)
	}

	var added models.Participant
	view, err := s.update(ctx, "AddParticipant", func(sess *session.Session) error {
		var err error
		added, err = sess.AddParticipant(req.Msg.Name)
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("Participant added", "session_id", view.ID, "participant_id", added.ID)
	return connect.NewResponse(&api.AddParticipantResponse{Participant: toAPIParticipant(added), Session: view}), nil
}

// RemoveParticipant removes a person and their shares.
func (s *SessionService) RemoveParticipant(ctx context.Context, req *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError("RemoveParticipant", err)
	}

	view, err := s.update(ctx, "RemoveParticipant", func(sess *session.Session) error {
		return sess.RemoveParticipant(req.Msg.ParticipantID)
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.RemoveParticipantResponse{Session: view}), nil
}

// SetShare assigns a quantity of one item to one participant.
func (s *SessionService) SetShare(ctx context.Context, req *connect.Request[api.SetShareRequest]) (*connect.Response[api.SetShareResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError("SetShare", err)
	}

	msg := req.Msg
	var stored float64
	view, err := s.update(ctx, "SetShare", func(sess *session.Session) error {
		var err error
		if msg.ItemID != "" && msg.ParticipantID != "" {
			stored, err = sess.SetShareByID(msg.ItemID, msg.ParticipantID, msg.Quantity)
		} else {
			stored, err = sess.SetShare(msg.ItemIndex, msg.ParticipantIndex, msg.Quantity)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.SetShareResponse{Quantity: stored, Session: view}), nil
}

// SetTaxAmount sets the bill's tax/tip.
func (s *SessionService) SetTaxAmount(ctx context.Context, req *connect.Request[api.SetTaxAmountRequest]) (*connect.Response[api.SetTaxAmountResponse], error) {
	var stored float64
	view, err := s.update(ctx, "SetTaxAmount", func(sess *session.Session) error {
		var err error
		stored, err = sess.SetTaxAmount(req.Msg.Amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.SetTaxAmountResponse{TaxAmount: stored, Session: view}), nil
}

// GetSummary returns the live per-person totals. They are final only when
// AllAssigned is set.
func (s *SessionService) GetSummary(ctx context.Context, req *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, toConnectError("GetSummary", err)
	}

	snap := sess.Snapshot()
	summaries := calculator.Settle(snap.Items, snap.Shares, snap.Participants, snap.TaxAmount)
	return connect.NewResponse(&api.GetSummaryResponse{
		Summaries:   toAPISummaries(summaries),
		GrandTotal:  calculator.GrandTotal(summaries),
		AllAssigned: len(snap.Items) > 0 && calculator.IsAllAssigned(snap.Items, snap.Shares),
	}), nil
}

// Settle finalizes a fully assigned session.
func (s *SessionService) Settle(ctx context.Context, req *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	summaries, err := s.sessions.Settle(ctx, id)
	if err != nil {
		return nil, toConnectError("Settle", err)
	}
	s.metrics.Settled()

	grandTotal := calculator.GrandTotal(summaries)
	slog.Info("Session settled", "session_id", id, "participants", len(summaries), "grand_total", grandTotal)
	return connect.NewResponse(&api.SettleResponse{
		Summaries:  toAPISummaries(summaries),
		GrandTotal: grandTotal,
	}), nil
}

// ExportSummary renders the settlement for sharing. The session must be
// fully assigned.
func (s *SessionService) ExportSummary(ctx context.Context, req *connect.Request[api.ExportSummaryRequest]) (*connect.Response[api.ExportSummaryResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError("ExportSummary", err)
	}
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, toConnectError("ExportSummary", err)
	}

	snap := sess.Snapshot()
	if len(snap.Items) == 0 || !calculator.IsAllAssigned(snap.Items, snap.Shares) {
		return nil, toConnectError("ExportSummary", session.ErrNotFullyAssigned)
	}
	summaries := calculator.Settle(snap.Items, snap.Shares, snap.Participants, snap.TaxAmount)

	format := req.Msg.Format
	if format == "" {
		format = api.ExportFormatMessage
	}

	var content string
	switch format {
	case api.ExportFormatMessage:
		content = s.renderer.Message(summaries)
	case api.ExportFormatWhatsApp:
		content = export.WhatsAppLink(s.renderer.Message(summaries))
	case api.ExportFormatJSON:
		data, err := export.JSON(id, snap.Items, summaries, snap.TaxAmount)
		if err != nil {
			return nil, toConnectError("ExportSummary", err)
		}
		content = string(data)
	}

	return connect.NewResponse(&api.ExportSummaryResponse{Format: format, Content: content}), nil
}

// Reset clears the session back to empty.
func (s *SessionService) Reset(ctx context.Context, req *connect.Request[api.ResetRequest]) (*connect.Response[api.ResetResponse], error) {
	view, err := s.update(ctx, "Reset", func(sess *session.Session) error {
		sess.Reset()
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Session reset", "session_id", view.ID)
	return connect.NewResponse(&api.ResetResponse{Session: view}), nil
}

// EndSession deletes the session. The token stops working.
func (s *SessionService) EndSession(ctx context.Context, req *connect.Request[api.EndSessionRequest]) (*connect.Response[api.EndSessionResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return nil, toConnectError("EndSession", err)
	}
	s.metrics.SessionEnded()
	return connect.NewResponse(&api.EndSessionResponse{}), nil
}
