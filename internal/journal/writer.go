package journal

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/faizmokh/jurnal/internal/logging"
	"github.com/faizmokh/jurnal/internal/session"
)

// DateLayout is how jurnal writes dates.
const DateLayout = "2006-01-02"

// Writer applies one mutation to a snapshot and persists the result. Every
// call performs exactly one persist; a snapshot that went stale since it was
// loaded fails with store.ErrConflict and must be reloaded.
type Writer struct {
	adapter   *Adapter
	equipment []string
	logger    *log.Logger
	now       func() time.Time
}

// NewWriter wires a writer. A non-empty equipment list restricts the labels
// entries may carry.
func NewWriter(adapter *Adapter, equipment []string, logger *log.Logger) *Writer {
	return &Writer{
		adapter:   adapter,
		equipment: equipment,
		logger:    logging.OrDiscard(logger),
		now:       time.Now,
	}
}

// Append adds entry to snapshot and persists it. Author defaults to the
// session's display name and Date to today.
func (w *Writer) Append(ctx context.Context, sess *session.Session, snapshot Table, entry Entry) (Table, Entry, error) {
	if err := sess.Check(); err != nil {
		return snapshot, Entry{}, err
	}

	entry = normalizeEntry(entry)
	if strings.TrimSpace(entry.Content) == "" {
		return snapshot, Entry{}, ErrContentRequired
	}
	if err := w.checkEquipment(entry.Equipment); err != nil {
		return snapshot, Entry{}, err
	}
	if entry.Author == "" {
		entry.Author = sess.DisplayName
	}
	if entry.Date == "" {
		entry.Date = w.now().Format(DateLayout)
	}
	entry.ID = NewID()

	next, err := w.adapter.Persist(session.WithContext(ctx, sess), snapshot.Append(entry))
	if err != nil {
		return snapshot, Entry{}, err
	}

	w.logger.Info("appended entry", "id", entry.ID, "actor", sess.DisplayName, "session", sess.ID)
	return next, entry, nil
}

// Edit patches the row ref names in snapshot and persists it.
func (w *Writer) Edit(ctx context.Context, sess *session.Session, snapshot Table, ref Ref, patch Patch) (Table, Entry, error) {
	if err := sess.Check(); err != nil {
		return snapshot, Entry{}, err
	}
	if patch.Empty() {
		return snapshot, Entry{}, ErrEmptyPatch
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return snapshot, Entry{}, ErrContentRequired
	}
	if patch.Equipment != nil {
		if err := w.checkEquipment(strings.TrimSpace(*patch.Equipment)); err != nil {
			return snapshot, Entry{}, err
		}
	}

	position, err := snapshot.Find(ref)
	if err != nil {
		return snapshot, Entry{}, err
	}
	updated, err := snapshot.Update(position, patch)
	if err != nil {
		return snapshot, Entry{}, err
	}

	next, err := w.adapter.Persist(session.WithContext(ctx, sess), updated)
	if err != nil {
		return snapshot, Entry{}, err
	}

	entry := next.Entries[position]
	w.logger.Info("edited entry", "id", entry.ID, "actor", sess.DisplayName, "session", sess.ID)
	return next, entry, nil
}

// Delete removes the row ref names in snapshot and persists it.
func (w *Writer) Delete(ctx context.Context, sess *session.Session, snapshot Table, ref Ref) (Table, Entry, error) {
	if err := sess.Check(); err != nil {
		return snapshot, Entry{}, err
	}

	position, err := snapshot.Find(ref)
	if err != nil {
		return snapshot, Entry{}, err
	}
	removed := snapshot.Entries[position]

	reduced, err := snapshot.Delete(position)
	if err != nil {
		return snapshot, Entry{}, err
	}
	next, err := w.adapter.Persist(session.WithContext(ctx, sess), reduced)
	if err != nil {
		return snapshot, Entry{}, err
	}

	w.logger.Info("deleted entry", "id", removed.ID, "actor", sess.DisplayName, "session", sess.ID)
	return next, removed, nil
}

func (w *Writer) checkEquipment(label string) error {
	if label == "" || len(w.equipment) == 0 {
		return nil
	}
	if slices.Contains(w.equipment, label) {
		return nil
	}
	return fmt.Errorf("%w %q (expected one of %s)", ErrUnknownEquipment, label, strings.Join(w.equipment, ", "))
}
