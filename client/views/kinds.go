package views

import (
	"strconv"
	"strings"

	"github.com/mediajournal/mediajournal/client"
)

func num(n *client.Number) string {
	if n == nil {
		return ""
	}
	return strconv.FormatFloat(float64(*n), 'f', -1, 64)
}

func stars(n *client.Number) string {
	if n == nil || *n < 1 {
		return ""
	}
	return strings.Repeat("*", int(*n))
}

func Blogs(c *client.Client) *View[client.Blog] {
	return New[client.Blog](c.Blogs(), Cards, []Field[client.Blog]{
		{Name: "title", Label: "Title", Value: func(b client.Blog) string { return b.Title }},
		{Name: "content", Label: "Content", Value: func(b client.Blog) string { return b.Content }},
	})
}

func Songs(c *client.Client) *View[client.Song] {
	return New[client.Song](c.Songs(), Table, []Field[client.Song]{
		{Name: "title", Label: "Title", Value: func(s client.Song) string { return s.Title }},
		{Name: "artist", Label: "Artist", Value: func(s client.Song) string { return s.Artist }},
		{Name: "album", Label: "Album", Value: func(s client.Song) string { return s.Album }},
		{Name: "releaseDate", Label: "Released", Value: func(s client.Song) string { return s.ReleaseDate.String() }},
		{Name: "rating", Label: "Rating", Value: func(s client.Song) string { return stars(s.Rating) }},
	})
}

func MusicVideos(c *client.Client) *View[client.MusicVideo] {
	return New[client.MusicVideo](c.MusicVideos(), Cards, []Field[client.MusicVideo]{
		{Name: "title", Label: "Title", Value: func(m client.MusicVideo) string { return m.Title }},
		{Name: "artist", Label: "Artist", Value: func(m client.MusicVideo) string { return m.Artist }},
		{Name: "url", Label: "URL", Value: func(m client.MusicVideo) string { return m.URL }},
		{Name: "releaseDate", Label: "Released", Value: func(m client.MusicVideo) string { return m.ReleaseDate.String() }},
		{Name: "rating", Label: "Rating", Value: func(m client.MusicVideo) string { return stars(m.Rating) }},
	})
}

func Movies(c *client.Client) *View[client.Movie] {
	return New[client.Movie](c.Movies(), Table, []Field[client.Movie]{
		{Name: "title", Label: "Title", Value: func(m client.Movie) string { return m.Title }},
		{Name: "director", Label: "Director", Value: func(m client.Movie) string { return m.Director }},
		{Name: "genre", Label: "Genre", Value: func(m client.Movie) string { return m.Genre }},
		{Name: "releaseDate", Label: "Released", Value: func(m client.Movie) string { return m.ReleaseDate.String() }},
		{Name: "rating", Label: "Rating", Value: func(m client.Movie) string { return stars(m.Rating) }},
	})
}

func Recipes(c *client.Client) *View[client.Recipe] {
	return New[client.Recipe](c.Recipes(), Cards, []Field[client.Recipe]{
		{Name: "title", Label: "Title", Value: func(r client.Recipe) string { return r.Title }},
		{Name: "ingredients", Label: "Ingredients", Value: func(r client.Recipe) string { return strings.Join(r.Ingredients, ", ") }},
		{Name: "instructions", Label: "Instructions", Value: func(r client.Recipe) string { return r.Instructions }},
		{Name: "prepTime", Label: "Prep (min)", Value: func(r client.Recipe) string { return num(r.PrepTime) }},
		{Name: "cookTime", Label: "Cook (min)", Value: func(r client.Recipe) string { return num(r.CookTime) }},
		{Name: "servings", Label: "Servings", Value: func(r client.Recipe) string { return num(r.Servings) }},
	})
}
