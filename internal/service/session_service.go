package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/gana36/billbeam/internal/calculator"
	"github.com/gana36/billbeam/internal/extract"
	"github.com/gana36/billbeam/internal/imagestore"
	"github.com/gana36/billbeam/internal/middleware"
	"github.com/gana36/billbeam/internal/models"
	"github.com/gana36/billbeam/internal/session"
	"github.com/gana36/billbeam/internal/share"
	"github.com/gana36/billbeam/internal/storage"
	"github.com/gana36/billbeam/pkg/api"
	"github.com/gana36/billbeam/pkg/api/apiconnect"
)

var _ apiconnect.SessionServiceHandler = (*SessionService)(nil)

// SessionService implements the Connect SessionService.
type SessionService struct {
	sessions  *session.Manager
	store     storage.Store
	extractor extract.Extractor // nil when no API key is configured
	images    imagestore.Store
	metrics   *middleware.Metrics
}

// SessionOption configures optional SessionService collaborators.
type SessionOption func(*SessionService)

// WithExtractor enables photo capture.
func WithExtractor(e extract.Extractor) SessionOption {
	return func(s *SessionService) { s.extractor = e }
}

// WithImageStore archives captured photos.
func WithImageStore(images imagestore.Store) SessionOption {
	return func(s *SessionService) { s.images = images }
}

// WithMetrics records extraction outcomes.
func WithMetrics(m *middleware.Metrics) SessionOption {
	return func(s *SessionService) { s.metrics = m }
}

// NewSessionService creates a SessionService over the given session manager and store.
func NewSessionService(sessions *session.Manager, store storage.Store, opts ...SessionOption) *SessionService {
	s := &SessionService{
		sessions: sessions,
		store:    store,
		images:   imagestore.Discard{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// get returns a snapshot of a session the caller may access.
func (s *SessionService) get(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// update applies fn to a session the caller may access.
func (s *SessionService) update(ctx context.Context, id string, fn func(*session.Session) error) (*session.Session, error) {
	return s.sessions.Update(id, func(sess *session.Session) error {
		if err := checkOwner(ctx, sess); err != nil {
			return err
		}
		return fn(sess)
	})
}

// checkOwner allows anonymous sessions to anyone holding the ID, and signed-in
// sessions only to their user.
func checkOwner(ctx context.Context, sess *session.Session) error {
	if sess.UserID != "" && sess.UserID != middleware.GetUserID(ctx) {
		return errNotYourSession
	}
	return nil
}

func sessionResponse(sess *session.Session) *connect.Response[api.SessionResponse] {
	return connect.NewResponse(&api.SessionResponse{Session: toAPISession(sess)})
}

// Start creates a session. For signed-in users the default group, if any, is loaded.
func (s *SessionService) Start(ctx context.Context, req *connect.Request[api.StartSessionRequest]) (*connect.Response[api.SessionResponse], error) {
	userID := middleware.GetUserID(ctx)
	sess := s.sessions.Create(userID)
	slog.Info("Session started", "session_id", sess.ID, "user_id", userID)

	if userID == "" {
		return sessionResponse(sess), nil
	}

	// The default group is a convenience; failing to load it never blocks a session.
	prefs, err := s.store.GetPreferences(ctx, userID)
	if err != nil {
		slog.Warn("Failed to load preferences", "user_id", userID, "error", err)
		return sessionResponse(sess), nil
	}
	if prefs.DefaultGroupID == "" {
		return sessionResponse(sess), nil
	}
	group, err := s.store.GetGroup(ctx, userID, prefs.DefaultGroupID)
	if err != nil {
		slog.Warn("Failed to load default group", "user_id", userID, "group_id", prefs.DefaultGroupID, "error", err)
		return sessionResponse(sess), nil
	}
	sess, err = s.sessions.Update(sess.ID, func(live *session.Session) error {
		live.LoadGroup(group)
		return nil
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Default group loaded", "session_id", sess.ID, "group_id", group.ID, "people", len(group.People))
	return sessionResponse(sess), nil
}

// Get returns the current state of a session.
func (s *SessionService) Get(ctx context.Context, req *connect.Request[api.GetSessionRequest]) (*connect.Response[api.SessionResponse], error) {
	sess, err := s.get(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return sessionResponse(sess), nil
}

// Capture extracts a receipt from the photo and accepts it into the session.
// On any failure the session stays in capture unchanged.
func (s *SessionService) Capture(ctx context.Context, req *connect.Request[api.CaptureRequest]) (*connect.Response[api.CaptureResponse], error) {
	sessionID := req.Msg.SessionID
	slog.Info("Capture request received",
		"session_id", sessionID,
		"bytes", len(req.Msg.Image),
		"mime_type", req.Msg.MimeType,
	)

	img := extract.Image{Data: req.Msg.Image, MIMEType: req.Msg.MimeType}
	if err := img.Validate(); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New(extract.UserMessage(err)))
	}

	sess, err := s.get(ctx, sessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if sess.Phase != session.PhaseCapture {
		return nil, connect.NewError(connect.CodeFailedPrecondition,
			fmt.Errorf("%w: capture is only possible in the %s phase", session.ErrInvalidTransition, session.PhaseCapture))
	}
	if s.extractor == nil {
		return nil, connect.NewError(connect.CodeUnavailable, errors.New(extract.UserMessage(extract.ErrMissingAPIKey)))
	}

	start := time.Now()
	receipt, err := s.extractor.Extract(ctx, img)
	elapsed := time.Since(start)
	if err != nil {
		code, outcome := connect.CodeUnavailable, middleware.ExtractionFailed
		if isUnreadableReceipt(err) {
			code, outcome = connect.CodeInvalidArgument, middleware.ExtractionRejected
		}
		s.metrics.ObserveExtraction(outcome, elapsed)
		slog.Error("Extraction failed", "session_id", sessionID, "outcome", outcome, "error", err)
		return nil, connect.NewError(code, errors.New(extract.UserMessage(err)))
	}
	s.metrics.ObserveExtraction(middleware.ExtractionOK, elapsed)

	// Archiving is best effort.
	if key, err := s.images.Put(ctx, sess.UserID, img); err != nil {
		slog.Warn("Failed to archive receipt image", "session_id", sessionID, "error", err)
	} else {
		receipt.ImageKey = key
	}

	sess, err = s.update(ctx, sessionID, func(live *session.Session) error {
		return live.SetReceipt(receipt)
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Receipt captured",
		"session_id", sessionID,
		"items", len(sess.Receipt.Items),
		"total", sess.Receipt.Total,
		"duration_ms", elapsed.Milliseconds(),
	)
	return connect.NewResponse(&api.CaptureResponse{Session: toAPISession(sess)}), nil
}

// isUnreadableReceipt reports whether the model answered but the answer could not be used.
func isUnreadableReceipt(err error) bool {
	return errors.Is(err, extract.ErrMalformedResponse) ||
		errors.Is(err, extract.ErrNoItems) ||
		errors.Is(err, extract.ErrNonNumericPrice)
}

// SetReceipt accepts a receipt typed in or corrected by hand.
func (s *SessionService) SetReceipt(ctx context.Context, req *connect.Request[api.SetReceiptRequest]) (*connect.Response[api.SessionResponse], error) {
	if req.Msg.Receipt == nil || len(req.Msg.Receipt.Items) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, extract.ErrNoItems)
	}
	receipt := fromAPIReceipt(req.Msg.Receipt)
	for _, item := range receipt.Items {
		if !finite(item.Price) || (item.Discount != nil && !finite(*item.Discount)) {
			return nil, connect.NewError(connect.CodeInvalidArgument, extract.ErrNonNumericPrice)
		}
	}

	sess, err := s.update(ctx, req.Msg.SessionID, func(live *session.Session) error {
		return live.SetReceipt(receipt)
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return sessionResponse(sess), nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// AddPerson appends a person to the roster.
func (s *SessionService) AddPerson(ctx context.Context, req *connect.Request[api.AddPersonRequest]) (*connect.Response[api.AddPersonResponse], error) {
	var person models.Person
	sess, err := s.update(ctx, req.Msg.SessionID, func(live *session.Session) error {
		p, err := live.AddPerson(req.Msg.Name)
		if err != nil {
			return err
		}
		person = p
		return nil
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.AddPersonResponse{
		Session: toAPISession(sess),
		Person:  api.Person{ID: person.ID, Name: person.Name, Color: person.Color},
	}), nil
}

// RemovePerson drops a person and their assignments.
func (s *SessionService) RemovePerson(ctx context.Context, req *connect.Request[api.RemovePersonRequest]) (*connect.Response[api.SessionResponse], error) {
	sess, err := s.update(ctx, req.Msg.SessionID, func(live *session.Session) error {
		live.RemovePerson(req.Msg.PersonID)
		return nil
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return sessionResponse(sess), nil
}

// ToggleAssignment adds or removes a person from an item.
func (s *SessionService) ToggleAssignment(ctx context.Context, req *connect.Request[api.ToggleAssignmentRequest]) (*connect.Response[api.SessionResponse], error) {
	sess, err := s.update(ctx, req.Msg.SessionID, func(live *session.Session) error {
		live.ToggleAssignment(req.Msg.ItemID, req.Msg.PersonID)
		return nil
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return sessionResponse(sess), nil
}

// SetSplitMode switches between equal and manual splitting.
func (s *SessionService) SetSplitMode(ctx context.Context, req *connect.Request[api.SetSplitModeRequest]) (*connect.Response[api.SessionResponse], error) {
	mode := session.SplitMode(strings.ToLower(req.Msg.Mode))
	sess, err := s.update(ctx, req.Msg.SessionID, func(live *session.Session) error {
		return live.SetSplitMode(mode)
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return sessionResponse(sess), nil
}

// UpdateItem edits an item's description or price.
func (s *SessionService) UpdateItem(ctx context.Context, req *connect.Request[api.UpdateItemRequest]) (*connect.Response[api.SessionResponse], error) {
	for _, v := range []*float64{req.Msg.Price, req.Msg.OriginalPrice, req.Msg.Discount} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return nil, connect.NewError(connect.CodeInvalidArgument, extract.ErrNonNumericPrice)
		}
	}
	patch := session.ItemPatch{
		Description:   req.Msg.Description,
		Price:         req.Msg.Price,
		OriginalPrice: req.Msg.OriginalPrice,
		Discount:      req.Msg.Discount,
	}
	sess, err := s.update(ctx, req.Msg.SessionID, func(live *session.Session) error {
		live.UpdateItem(req.Msg.ItemID, patch)
		return nil
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return sessionResponse(sess), nil
}

// UpdateTotals edits tax, tip and miscellaneous.
func (s *SessionService) UpdateTotals(ctx context.Context, req *connect.Request[api.UpdateTotalsRequest]) (*connect.Response[api.SessionResponse], error) {
	patch := session.TotalsPatch{
		Tax:           req.Msg.Tax,
		Tip:           req.Msg.Tip,
		Miscellaneous: req.Msg.Miscellaneous,
	}
	sess, err := s.update(ctx, req.Msg.SessionID, func(live *session.Session) error {
		live.UpdateReceiptTotals(patch)
		return nil
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return sessionResponse(sess), nil
}

// SetPhase moves between assignment and settlement.
func (s *SessionService) SetPhase(ctx context.Context, req *connect.Request[api.SetPhaseRequest]) (*connect.Response[api.SessionResponse], error) {
	phase := session.Phase(strings.ToLower(req.Msg.Phase))
	sess, err := s.update(ctx, req.Msg.SessionID, func(live *session.Session) error {
		return live.SetPhase(phase)
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Phase changed", "session_id", sess.ID, "phase", sess.Phase)
	return sessionResponse(sess), nil
}

// Reset clears the session back to capture.
func (s *SessionService) Reset(ctx context.Context, req *connect.Request[api.ResetRequest]) (*connect.Response[api.SessionResponse], error) {
	sess, err := s.update(ctx, req.Msg.SessionID, func(live *session.Session) error {
		live.Reset()
		return nil
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return sessionResponse(sess), nil
}

// settle computes the settlement for a session the caller may access.
func (s *SessionService) settle(ctx context.Context, sessionID string, roundToDollar bool) (*session.Session, []calculator.SettlementLine, error) {
	sess, err := s.get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if sess.Receipt == nil {
		return nil, nil, session.ErrNoReceipt
	}
	return sess, calculator.Settle(sess.Receipt, sess.People, roundToDollar), nil
}

// Settle returns what each person owes.
func (s *SessionService) Settle(ctx context.Context, req *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error) {
	sess, lines, err := s.settle(ctx, req.Msg.SessionID, req.Msg.RoundToDollar)
	if err != nil {
		return nil, toConnectError(err)
	}
	summary := calculator.Summarize(sess.Receipt, lines)
	return connect.NewResponse(&api.SettleResponse{
		Lines: toAPILines(lines),
		Summary: api.SettlementSummary{
			AssignedItems: summary.AssignedItems,
			TotalItems:    summary.TotalItems,
			SettledTotal:  summary.SettledTotal,
			BillTotal:     sess.Receipt.Total,
			Drift:         summary.Drift,
		},
	}), nil
}

// Share renders the settlement for the clipboard and WhatsApp.
func (s *SessionService) Share(ctx context.Context, req *connect.Request[api.ShareRequest]) (*connect.Response[api.ShareResponse], error) {
	sess, lines, err := s.settle(ctx, req.Msg.SessionID, req.Msg.RoundToDollar)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ShareResponse{
		Title:        share.Title,
		Text:         share.PlainText(sess.Receipt, lines),
		WhatsAppText: share.WhatsAppMessage(sess.Receipt, lines),
		WhatsAppURL:  share.WhatsAppURL(sess.Receipt, lines),
	}), nil
}

// LoadGroup replaces the roster with a saved group.
func (s *SessionService) LoadGroup(ctx context.Context, req *connect.Request[api.LoadGroupRequest]) (*connect.Response[api.SessionResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	group, err := s.store.GetGroup(ctx, userID, req.Msg.GroupID)
	if err != nil {
		slog.Error("LoadGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	sess, err := s.update(ctx, req.Msg.SessionID, func(live *session.Session) error {
		live.LoadGroup(group)
		return nil
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return sessionResponse(sess), nil
}

// LoadReceipt replaces the receipt and roster with a saved receipt.
func (s *SessionService) LoadReceipt(ctx context.Context, req *connect.Request[api.LoadReceiptRequest]) (*connect.Response[api.SessionResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	saved, err := s.store.GetReceipt(ctx, userID, req.Msg.ReceiptID)
	if err != nil {
		slog.Error("LoadReceipt failed", "receipt_id", req.Msg.ReceiptID, "error", err)
		return nil, toConnectError(err)
	}
	sess, err := s.update(ctx, req.Msg.SessionID, func(live *session.Session) error {
		live.LoadReceipt(saved)
		return nil
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Receipt loaded", "session_id", sess.ID, "receipt_id", saved.ID)
	return sessionResponse(sess), nil
}

// Save writes the session's receipt and roster to the user's history. A session
// loaded from or already saved to an entry updates that entry.
func (s *SessionService) Save(ctx context.Context, req *connect.Request[api.SaveRequest]) (*connect.Response[api.SaveResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := s.get(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if sess.Receipt == nil {
		return nil, toConnectError(session.ErrNoReceipt)
	}

	saved := &models.SavedReceipt{
		ID:      sess.SavedID,
		UserID:  userID,
		Receipt: *sess.Receipt,
		People:  sess.People,
	}
	if title := strings.TrimSpace(req.Msg.Title); title != "" {
		saved.Receipt.Title = title
	}

	if saved.ID != "" {
		err = s.store.UpdateReceipt(ctx, saved)
		if errors.Is(err, storage.ErrNotFound) {
			// deleted from history since it was loaded
			saved.ID = ""
			err = s.store.CreateReceipt(ctx, saved)
		}
	} else {
		err = s.store.CreateReceipt(ctx, saved)
	}
	if err != nil {
		slog.Error("Save failed", "session_id", sess.ID, "error", err)
		return nil, toConnectError(err)
	}

	sess, err = s.update(ctx, sess.ID, func(live *session.Session) error {
		live.UserID = userID
		live.SavedID = saved.ID
		if live.Receipt != nil {
			live.Receipt.Title = saved.Receipt.Title
		}
		return nil
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Receipt saved", "session_id", sess.ID, "receipt_id", saved.ID, "title", saved.Receipt.Title)
	return connect.NewResponse(&api.SaveResponse{
		Session: toAPISession(sess),
		Saved:   toAPISaved(saved),
	}), nil
}
