package model

import "strings"

// Blog is a journal entry.
type Blog struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (b Blog) Normalized() Blog {
	b.Title = strings.TrimSpace(b.Title)
	b.Content = strings.TrimSpace(b.Content)
	return b
}

func (b Blog) Validate() error {
	return firstErr(
		required("title", b.Title, maxTitleLen),
		required("content", b.Content, maxTextLen),
	)
}

// Song is a track the user has listened to.
type Song struct {
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	Album       string  `json:"album,omitempty"`
	ReleaseDate *Date   `json:"releaseDate,omitempty"`
	Rating      *Number `json:"rating,omitempty"`
}

func (s Song) Normalized() Song {
	s.Title = strings.TrimSpace(s.Title)
	s.Artist = strings.TrimSpace(s.Artist)
	s.Album = strings.TrimSpace(s.Album)
	s.ReleaseDate = normalizeDate(s.ReleaseDate)
	return s
}

func (s Song) Validate() error {
	return firstErr(
		required("title", s.Title, maxTitleLen),
		required("artist", s.Artist, maxTitleLen),
		maxLen("album", s.Album, maxTitleLen),
		rating(s.Rating),
	)
}

type MusicVideo struct {
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	URL         string  `json:"url"`
	ReleaseDate *Date   `json:"releaseDate,omitempty"`
	Rating      *Number `json:"rating,omitempty"`
}

func (v MusicVideo) Normalized() MusicVideo {
	v.Title = strings.TrimSpace(v.Title)
	v.Artist = strings.TrimSpace(v.Artist)
	v.URL = strings.TrimSpace(v.URL)
	v.ReleaseDate = normalizeDate(v.ReleaseDate)
	return v
}

func (v MusicVideo) Validate() error {
	return firstErr(
		required("title", v.Title, maxTitleLen),
		required("artist", v.Artist, maxTitleLen),
		httpURL("url", v.URL),
		rating(v.Rating),
	)
}

type Movie struct {
	Title       string  `json:"title"`
	Director    string  `json:"director"`
	ReleaseDate *Date   `json:"releaseDate,omitempty"`
	Genre       string  `json:"genre,omitempty"`
	Rating      *Number `json:"rating,omitempty"`
}

func (m Movie) Normalized() Movie {
	m.Title = strings.TrimSpace(m.Title)
	m.Director = strings.TrimSpace(m.Director)
	m.Genre = strings.TrimSpace(m.Genre)
	m.ReleaseDate = normalizeDate(m.ReleaseDate)
	return m
}

func (m Movie) Validate() error {
	return firstErr(
		required("title", m.Title, maxTitleLen),
		required("director", m.Director, maxTitleLen),
		maxLen("genre", m.Genre, maxTitleLen),
		rating(m.Rating),
	)
}

// Recipe times are in minutes.
type Recipe struct {
	Title        string      `json:"title"`
	Ingredients  Ingredients `json:"ingredients"`
	Instructions string      `json:"instructions"`
	PrepTime     *Number     `json:"prepTime"`
	CookTime     *Number     `json:"cookTime"`
	Servings     *Number     `json:"servings"`
}

func (r Recipe) Normalized() Recipe {
	r.Title = strings.TrimSpace(r.Title)
	r.Instructions = strings.TrimSpace(r.Instructions)
	r.Ingredients = r.Ingredients.normalized()
	return r
}

func (r Recipe) Validate() error {
	if err := required("title", r.Title, maxTitleLen); err != nil {
		return err
	}
	if len(r.Ingredients) == 0 {
		return NewValidationError("ingredients", "is required")
	}
	for _, in := range r.Ingredients {
		if err := maxLen("ingredients", in, maxShortLen); err != nil {
			return err
		}
	}
	return firstErr(
		required("instructions", r.Instructions, maxTextLen),
		requiredNumber("prepTime", r.PrepTime, 0),
		requiredNumber("cookTime", r.CookTime, 0),
		requiredNumber("servings", r.Servings, 1),
	)
}
