package assist

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

var (
	headingLine = regexp.MustCompile(`^#{1,3}\s+(.+)$`)
	// Keys may contain inner spaces ("null deref") but must start with a word character.
	pairLine = regexp.MustCompile(`^[-*]\s+(\w[\w -]*?)\s*:\s*(.*)$`)
)

// Pair is one "key: value" bullet inside a section.
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Section is a titled group of pairs in reply order.
type Section struct {
	Title string `json:"title"`
	Pairs []Pair `json:"pairs"`
}

// Get returns the value stored under key.
func (s Section) Get(key string) (string, bool) {
	for _, p := range s.Pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Map returns the pairs as a plain map.
func (s Section) Map() map[string]string {
	out := make(map[string]string, len(s.Pairs))
	for _, p := range s.Pairs {
		out[p.Key] = p.Value
	}
	return out
}

func (s *Section) set(key, value string) {
	for i := range s.Pairs {
		if s.Pairs[i].Key == key {
			s.Pairs[i].Value = value
			return
		}
	}
	s.Pairs = append(s.Pairs, Pair{Key: key, Value: value})
}

// Sections is an ordered title → pairs mapping.
type Sections []Section

// Get returns the section titled title.
func (ss Sections) Get(title string) (Section, bool) {
	for _, s := range ss {
		if s.Title == title {
			return s, true
		}
	}
	return Section{}, false
}

// Titles lists section titles in order.
func (ss Sections) Titles() []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.Title
	}
	return out
}

// HasPairs reports whether any section carries at least one pair.
func (ss Sections) HasPairs() bool {
	for _, s := range ss {
		if len(s.Pairs) > 0 {
			return true
		}
	}
	return false
}

// put commits a finished section. A repeated title keeps its original
// position and takes the newer pairs.
func (ss Sections) put(s Section) Sections {
	for i := range ss {
		if ss[i].Title == s.Title {
			ss[i] = s
			return ss
		}
	}
	return append(ss, s)
}

// MarshalJSON writes the sections as a JSON object whose key order matches
// reply order: {"Architecture":{"pattern":"MVC"}}.
func (ss Sections) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range ss {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, s.Title); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for j, p := range s.Pairs {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, p.Key); err != nil {
				return nil, err
			}
			v, err := json.Marshal(p.Value)
			if err != nil {
				return nil, err
			}
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	return nil
}

// ExtractSections scans text line by line and groups bulleted "key: value"
// lines under the markdown heading (#, ## or ###) above them. Lines before the
// first heading and lines matching neither pattern are dropped. Duplicate keys
// in a section keep the last value. Never fails; unstructured text yields no
// sections.
func ExtractSections(text string) Sections {
	var (
		out     Sections
		current *Section
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if m := headingLine.FindStringSubmatch(line); m != nil && strings.TrimSpace(m[1]) != "" {
			if current != nil {
				out = out.put(*current)
			}
			current = &Section{Title: strings.TrimSpace(m[1])}
			continue
		}

		if current == nil {
			continue
		}
		if m := pairLine.FindStringSubmatch(line); m != nil {
			current.set(strings.TrimSpace(m[1]), strings.TrimSpace(m[2]))
		}
	}

	if current != nil {
		out = out.put(*current)
	}
	return out
}
