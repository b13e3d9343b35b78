// Package notes is the built-in note-taking skill with a JSON file store.
package notes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/gg/gconv"
	"github.com/bytedance/sonic"

	"github.com/edisonhq/edison/internal/consts"
	"github.com/edisonhq/edison/internal/pkg/utils"
	"github.com/edisonhq/edison/internal/skill"
)

func init() {
	skill.MustRegisterService("skills/notes/service", "NotesService",
		func(args []any, kwargs map[string]any) (any, error) {
			return NewNotesService(kwargs)
		},
		// Module-level marker list: ground truth over anything the
		// metadata file declares.
		skill.WithCommands("CreateNote", "DetectRequest", "ListNotes", "SearchNotes"),
	)
}

type Note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type NotesService struct {
	store string

	mu    sync.Mutex
	notes []Note
}

func NewNotesService(kwargs map[string]any) (*NotesService, error) {
	store := gconv.To[string](kwargs["store"])
	if store == "" {
		store = filepath.Join(consts.EdisonHomeDir(), "notes.json")
	}

	s := &NotesService{store: store}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("load notes store: %w", err)
	}
	return s, nil
}

// CreateNote stores text and returns a confirmation with the note ID.
func (s *NotesService) CreateNote(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("note text cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	note := Note{
		ID:        utils.RandStr(8),
		Text:      text,
		CreatedAt: time.Now(),
	}
	s.notes = append(s.notes, note)
	if err := s.save(); err != nil {
		return "", err
	}
	return fmt.Sprintf("📝 Noted (%s): %s", note.ID, utils.Truncate80(note.Text)), nil
}

// ListNotes renders every stored note, newest last.
func (s *NotesService) ListNotes() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.notes) == 0 {
		return "You have no notes yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d notes:\n", len(s.notes))
	for _, note := range s.notes {
		fmt.Fprintf(&b, "• [%s] %s\n", note.ID, utils.Truncate80(note.Text))
	}
	return b.String()
}

// SearchNotes returns the notes whose text contains query.
func (s *NotesService) SearchNotes(query string) string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	for _, note := range s.notes {
		if strings.Contains(strings.ToLower(note.Text), query) {
			fmt.Fprintf(&b, "• [%s] %s\n", note.ID, utils.Truncate80(note.Text))
		}
	}
	if b.Len() == 0 {
		return fmt.Sprintf("No notes match %q.", query)
	}
	return b.String()
}

// DetectRequest handles "note: ..." and "remember ..." phrasings plus
// "list notes" and "find note ..." queries.
func (s *NotesService) DetectRequest(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	switch {
	case strings.HasPrefix(lower, "note:"):
		return s.CreateNote(trimmed[len("note:"):])
	case strings.HasPrefix(lower, "remember "):
		return s.CreateNote(trimmed[len("remember "):])
	case lower == "list notes" || lower == "show notes" || lower == "my notes":
		return s.ListNotes(), nil
	case strings.HasPrefix(lower, "find note "):
		return s.SearchNotes(trimmed[len("find note "):]), nil
	default:
		return "", nil
	}
}

func (s *NotesService) load() error {
	data, err := os.ReadFile(s.store)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return sonic.Unmarshal(data, &s.notes)
}

// save is called with s.mu held.
func (s *NotesService) save() error {
	data, err := sonic.MarshalIndent(s.notes, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.store); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.store, data, 0o644)
}
