// Package dictionary looks up word data from a dictionaryapi.dev compatible
// HTTP service.
package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/inkwell/internal/apperr"
)

// Entry is the structured data of one word.
type Entry struct {
	Word        string       `json:"word"`
	Phonetic    string       `json:"phonetic,omitempty"`
	Definitions []Definition `json:"definitions"`
	Examples    []string     `json:"examples,omitempty"`
	Synonyms    []string     `json:"synonyms,omitempty"`
}

// Definition is one sense of a word.
type Definition struct {
	PartOfSpeech string `json:"part_of_speech"`
	Text         string `json:"text"`
}

// Lookup resolves a query string to an Entry.
type Lookup interface {
	Lookup(ctx context.Context, word string) (*Entry, error)
}

// Client is the HTTP Lookup.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL (e.g.
// https://api.dictionaryapi.dev/api/v2/entries/en).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// wire format of the upstream service
type apiEntry struct {
	Word      string `json:"word"`
	Phonetic  string `json:"phonetic"`
	Phonetics []struct {
		Text string `json:"text"`
	} `json:"phonetics"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string   `json:"definition"`
			Example    string   `json:"example"`
			Synonyms   []string `json:"synonyms"`
		} `json:"definitions"`
		Synonyms []string `json:"synonyms"`
	} `json:"meanings"`
}

// Lookup fetches word. Unknown words wrap apperr.ErrNotFound.
func (c *Client) Lookup(ctx context.Context, word string) (*Entry, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, fmt.Errorf("dictionary: empty word")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(word), nil)
	if err != nil {
		return nil, fmt.Errorf("dictionary: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dictionary: lookup %s: %w", word, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("dictionary: lookup %s: %w", word, apperr.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("dictionary: lookup %s: unexpected status %d", word, resp.StatusCode)
	}

	var raw []apiEntry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("dictionary: decode %s: %w", word, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("dictionary: lookup %s: %w", word, apperr.ErrNotFound)
	}
	return convert(raw), nil
}

func convert(raw []apiEntry) *Entry {
	e := &Entry{Word: raw[0].Word}
	seen := make(map[string]struct{})
	addSyn := func(syns []string) {
		for _, s := range syns {
			if _, ok := seen[s]; ok || s == "" {
				continue
			}
			seen[s] = struct{}{}
			e.Synonyms = append(e.Synonyms, s)
		}
	}
	for _, r := range raw {
		if e.Phonetic == "" {
			e.Phonetic = r.Phonetic
		}
		for _, p := range r.Phonetics {
			if e.Phonetic == "" && p.Text != "" {
				e.Phonetic = p.Text
			}
		}
		for _, m := range r.Meanings {
			for _, d := range m.Definitions {
				e.Definitions = append(e.Definitions, Definition{PartOfSpeech: m.PartOfSpeech, Text: d.Definition})
				if d.Example != "" {
					e.Examples = append(e.Examples, d.Example)
				}
				addSyn(d.Synonyms)
			}
			addSyn(m.Synonyms)
		}
	}
	return e
}
