package model

// SnippetUpdate is a sparse change-set for a card.
//
// POINTER FIELDS AS "OPTIONAL":
// A nil pointer means "not part of this change"; a non-nil pointer means
// "set to this value", even when the value is the empty string. With plain
// string fields we could not tell "clear the title" from "leave it alone".
// `omitempty` drops nil pointers from the JSON, so only intended changes
// travel over the wire.
type SnippetUpdate struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Theme   *Theme  `json:"theme,omitempty"`
	Phase   *Phase  `json:"phase,omitempty"`
}

// SnippetField describes one editable card field.
//
// Every editable field is listed once in SnippetFields; diffing, applying and
// naming the fields of an update all walk that list. Adding an editable field
// means adding one entry there.
type SnippetField struct {
	Name string
	get  func(Snippet) string
	set  func(*Snippet, string)
	peek func(SnippetUpdate) (string, bool)
	mark func(*SnippetUpdate, string)
}

// SnippetFields is the fixed list of editable fields, in display order.
var SnippetFields = []SnippetField{
	{
		Name: "title",
		get:  func(s Snippet) string { return s.Title },
		set:  func(s *Snippet, v string) { s.Title = v },
		peek: func(u SnippetUpdate) (string, bool) { return deref(u.Title) },
		mark: func(u *SnippetUpdate, v string) { u.Title = &v },
	},
	{
		Name: "content",
		get:  func(s Snippet) string { return s.Content },
		set:  func(s *Snippet, v string) { s.Content = v },
		peek: func(u SnippetUpdate) (string, bool) { return deref(u.Content) },
		mark: func(u *SnippetUpdate, v string) { u.Content = &v },
	},
	{
		Name: "theme",
		get:  func(s Snippet) string { return string(s.Theme) },
		set:  func(s *Snippet, v string) { s.Theme = Theme(v) },
		peek: func(u SnippetUpdate) (string, bool) { return deref(u.Theme) },
		mark: func(u *SnippetUpdate, v string) { t := Theme(v); u.Theme = &t },
	},
	{
		Name: "phase",
		get:  func(s Snippet) string { return string(s.Phase) },
		set:  func(s *Snippet, v string) { s.Phase = Phase(v) },
		peek: func(u SnippetUpdate) (string, bool) { return deref(u.Phase) },
		mark: func(u *SnippetUpdate, v string) { p := Phase(v); u.Phase = &p },
	},
}

func deref[T ~string](p *T) (string, bool) {
	if p == nil {
		return "", false
	}
	return string(*p), true
}

// DiffSnippet returns the fields of edited that differ from original.
// The result is empty when nothing changed.
func DiffSnippet(original, edited Snippet) SnippetUpdate {
	var u SnippetUpdate
	for _, f := range SnippetFields {
		if v := f.get(edited); v != f.get(original) {
			f.mark(&u, v)
		}
	}
	return u
}

// Apply writes every present field of u onto s.
func (u SnippetUpdate) Apply(s *Snippet) {
	for _, f := range SnippetFields {
		if v, ok := f.peek(u); ok {
			f.set(s, v)
		}
	}
}

// Fields returns the names of the fields present in u, in SnippetFields order.
func (u SnippetUpdate) Fields() []string {
	var names []string
	for _, f := range SnippetFields {
		if _, ok := f.peek(u); ok {
			names = append(names, f.Name)
		}
	}
	return names
}

// IsEmpty reports whether u carries no changes.
func (u SnippetUpdate) IsEmpty() bool {
	return len(u.Fields()) == 0
}
