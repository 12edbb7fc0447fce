// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package matching

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

// maxPostersPerCandidate bounds image downloads per provider hit.
const maxPostersPerCandidate = 3

type step struct {
	provider Provider
	// requires names an id that must already be known for the step to run.
	requires string
	// accept filters hits. nil accepts every hit.
	accept func(s Subject, c *Candidate) bool
	// posters picks the usable posters of a hit in preference order. nil
	// uses preferredOrder.
	posters func(s Subject, c *Candidate) []Poster
}

// waterfall runs its steps strictly in order and stops at the first hit
// whose poster downloads to a usable body.
type waterfall struct {
	name     string
	steps    []step
	fetcher  ImageFetcher
	validate func([]byte) error
	recorder Recorder
}

func newWaterfall(name string, opts Options, steps ...step) *waterfall {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	configured := make([]step, 0, len(steps))
	for _, st := range steps {
		if st.provider != nil {
			configured = append(configured, st)
		}
	}
	return &waterfall{name: name, steps: configured, fetcher: opts.Fetcher, validate: opts.ValidateImage, recorder: recorder}
}

func (w *waterfall) run(ctx context.Context, s Subject) (*Match, error) {
	ids := maps.Clone(s.IDs)
	if ids == nil {
		ids = make(map[string]string)
	}

	// identified is the first accepted hit. Later steps may only supply an
	// image for it.
	var identified *Candidate

	for i, st := range w.steps {
		key := st.provider.Key()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if st.requires != "" && ids[st.requires] == "" {
			w.recorder.ProviderCall(key, OutcomeSkipped)
			continue
		}

		q := s.query()
		q.IDs = maps.Clone(ids)

		c, err := st.provider.Search(ctx, q)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			w.recorder.ProviderCall(key, OutcomeError)
			log.Warn().Err(err).Str("strategy", w.name).Str("provider", key).Str("title", s.Title).Msg("provider search failed")
			continue
		}
		if c == nil {
			w.recorder.ProviderCall(key, OutcomeMiss)
			log.Debug().Str("strategy", w.name).Str("provider", key).Str("title", s.Title).Msg("provider miss")
			continue
		}
		if c.ProviderKey == "" {
			c.ProviderKey = key
		}
		if st.accept != nil && !st.accept(s, c) {
			w.recorder.ProviderCall(key, OutcomeRejected)
			log.Debug().Str("strategy", w.name).Str("provider", key).Str("candidate", c.Title).
				Float64("confidence", c.Confidence).Msg("provider hit rejected")
			continue
		}

		if identified == nil {
			identified = c
		}
		mergeIDs(ids, c)

		pick := preferredOrder
		if st.posters != nil {
			pick = st.posters
		}
		m, err := w.download(ctx, s, c, pick(s, c))
		if err != nil {
			return nil, err
		}
		if m == nil {
			w.recorder.ProviderCall(key, OutcomeEmptyImage)
			log.Debug().Str("strategy", w.name).Str("provider", key).Str("candidate", c.Title).Msg("provider hit has no usable poster")
			if c.LookupCrossRefs != nil && w.needsIDs(w.steps[i+1:], ids) {
				w.lookupCrossRefs(ctx, ids, c)
			}
			continue
		}

		w.recorder.ProviderCall(key, OutcomeHit)
		m.Source = identified.ProviderKey
		m.Confidence = identified.Confidence
		if m.Confidence <= 0 {
			m.Confidence = c.Confidence
		}
		m.IDs = ids
		return m, nil
	}

	return nil, ErrNoMatch
}

// download returns nil without error when no poster yields usable bytes.
// Only a cancelled ctx is an error.
func (w *waterfall) download(ctx context.Context, s Subject, c *Candidate, posters []Poster) (*Match, error) {
	if w.fetcher == nil {
		return nil, nil
	}
	if len(posters) > maxPostersPerCandidate {
		posters = posters[:maxPostersPerCandidate]
	}
	for _, p := range posters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := w.fetcher.Fetch(ctx, p.URL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Debug().Err(err).Str("provider", c.ProviderKey).Str("url", p.URL).Msg("poster download failed")
			continue
		}
		if len(data) == 0 {
			continue
		}
		if w.validate != nil {
			if err := w.validate(data); err != nil {
				log.Debug().Err(err).Str("provider", c.ProviderKey).Str("url", p.URL).Msg("poster download is not a usable image")
				continue
			}
		}
		return &Match{
			Provider:   c.ProviderKey,
			ProviderID: c.ProviderID,
			Poster:     p,
			Image:      data,
		}, nil
	}
	return nil, nil
}

// needsIDs reports whether one of steps waits on an id not known yet.
func (w *waterfall) needsIDs(steps []step, ids map[string]string) bool {
	for _, st := range steps {
		if st.requires != "" && ids[st.requires] == "" {
			return true
		}
	}
	return false
}

func (w *waterfall) lookupCrossRefs(ctx context.Context, ids map[string]string, c *Candidate) {
	refs, err := c.LookupCrossRefs(ctx)
	if err != nil {
		log.Debug().Err(err).Str("strategy", w.name).Str("provider", c.ProviderKey).Msg("cross reference lookup failed")
		return
	}
	for k, v := range refs {
		if v != "" && ids[k] == "" {
			ids[k] = v
		}
	}
}

func mergeIDs(ids map[string]string, c *Candidate) {
	if c.ProviderID != "" && ids[c.ProviderKey] == "" {
		ids[c.ProviderKey] = c.ProviderID
	}
	for k, v := range c.CrossRefs {
		if v != "" && ids[k] == "" {
			ids[k] = v
		}
	}
}

// preferredOrder puts posters in the subject's language first, then
// language-neutral ones, then English, then the rest. Posters without a
// URL are dropped.
func preferredOrder(s Subject, c *Candidate) []Poster {
	lang := strings.ToLower(strings.TrimSpace(s.PreferredLang))
	rank := func(p Poster) int {
		l := strings.ToLower(p.Lang)
		switch {
		case lang != "" && l == lang:
			return 0
		case l == "" || l == "00" || l == "xx":
			return 1
		case l == "en":
			return 2
		default:
			return 3
		}
	}

	out := make([]Poster, 0, len(c.Posters))
	for _, p := range c.Posters {
		if strings.TrimSpace(p.URL) != "" {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b Poster) int { return rank(a) - rank(b) })
	return out
}

// preferredLangOnly keeps posters in the subject's language. Without a
// preferred language every poster qualifies.
func preferredLangOnly(s Subject, c *Candidate) []Poster {
	lang := strings.ToLower(strings.TrimSpace(s.PreferredLang))
	if lang == "" {
		return preferredOrder(s, c)
	}
	var out []Poster
	for _, p := range preferredOrder(s, c) {
		if strings.ToLower(p.Lang) == lang {
			out = append(out, p)
		}
	}
	return out
}
