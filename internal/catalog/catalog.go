// Package catalog lists music subreddits grouped by genre for browsing.
package catalog

import (
	"slices"
	"strings"
)

// CustomPath selects the user's own subreddit playlist instead of a listing.
const CustomPath = "custom-reddit"

// Subreddit is one browsable entry.
type Subreddit struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Category string `json:"category"`
}

// Custom reports whether the entry is the user's own playlist sentinel.
func (s Subreddit) Custom() bool { return s.Path == CustomPath }

// Category groups subreddits under a display name.
type Category struct {
	Name       string      `json:"name"`
	Subreddits []Subreddit `json:"subreddits"`
}

var groups = []struct {
	name  string
	names []string
}{
	{"Listening Communities", []string{"listentothis", "music", "indieheads", "hiphopheads", "popheads"}},
	{"Alternative", []string{
		"90sPunk", "EmoScreamo", "GaragePunk", "Punkskahardcore", "Ska", "crustpunk", "grunge", "poppunkers",
		"postpunk", "punk", "metal", "Metalcore", "BlackMetal", "deathmetal", "doommetal", "folkmetal",
		"powermetal", "progmetal", "thrashmetal",
	}},
	{"Asian", []string{"cpop", "jpop", "japanesemusic", "kpop", "vkgm", "thaimusic", "indianmusic", "Asianrap"}},
	{"Blues / Funk / Jazz / Soul", []string{"blues", "funk", "jazz", "soul", "RnBHeads"}},
	{"Country / Folk / Bluegrass", []string{"country", "country_music", "bluegrass", "altcountry", "folk", "FolkPunk"}},
	{"Electronic / EDM", []string{
		"electronicmusic", "edm", "house", "techno", "trance", "drum_and_bass", "DnB", "dubstep", "trap",
		"synthwave", "outrun", "deephouse", "futurebeats", "futurefunkairlines", "idm", "industrialtechno",
		"BigRoom", "complextro", "electrohouse", "progressivehouse", "tech_house", "treemusic",
	}},
	{"Experimental", []string{"experimental", "avantgarde", "noisemusic", "generativemusic", "psychedelicrock"}},
	{"Hip Hop / Rap", []string{
		"hiphop", "hiphopheads", "90sHipHop", "altrap", "backspin", "makinghiphop", "trapmuzik",
		"trapproduction", "rappers", "undergroundhiphop",
	}},
	{"Pop", []string{"pop_music", "popheads", "pop", "poprock", "PowerPop"}},
	{"Rock", []string{
		"rock", "classicrock", "hardrock", "progressiverock", "progressivemetal", "psychrock", "stonerrock",
		"AltRock", "indie_rock", "Alternativerock", "90sAlternative", "90smusic", "80smusic", "70smusic", "60smusic",
	}},
	{"Chill / Ambient / Lo-Fi", []string{
		"lofi", "lofihiphop", "ambient", "ambientmusic", "chillmusic", "chillout", "downtempo", "chillhop",
		"vaporwave", "futuresynth",
	}},
	{"Reggae / Dancehall / Dub", []string{"reggae", "dub", "dubstep", "realdubstep", "reggaeton", "Rocksteady"}},
	{"Latin / World", []string{"latin", "Salsa", "afrobeats", "Afrohouse", "balkanbrass", "Cumbia", "WorldMusic"}},
	{"Classical", []string{"classicalmusic", "composer", "contemporary", "opera"}},
	{"Singer-Songwriter / Acoustic", []string{"singersongwriter", "singersongwriters", "AcousticOriginals", "Acousticguitar"}},
	{"Indie / Alternative", []string{"indie", "indiefolk", "indieheads", "indie_rock", "IndieFolk"}},
	{"Production", []string{
		"makinghiphop", "musicproduction", "trapproduction", "audioengineering", "WeAreTheMusicMakers",
		"edmproduction", "Ableton", "FL_Studio",
	}},
	{"Soundtracks", []string{"gamemusic", "soundtracks", "OST", "FilmMusic", "chiptunes"}},
	{"Other Genres", []string{"disco", "Vocaloid", "Nightcore", "Kawaii", "swing", "Bossanova", "Flamenco", "Goth", "Cabaret"}},
}

// Categories returns the catalogue in display order, starting with the Favorite group
// that holds the custom playlist entry.
func Categories() []Category {
	out := make([]Category, 0, len(groups)+1)
	out = append(out, Category{
		Name:       "Favorite",
		Subreddits: []Subreddit{{Name: "My Subreddit Playlist", Path: CustomPath, Category: "Favorite"}},
	})
	for _, g := range groups {
		c := Category{Name: g.name, Subreddits: make([]Subreddit, len(g.names))}
		for i, n := range g.names {
			c.Subreddits[i] = Subreddit{Name: n, Path: "r/" + n, Category: g.name}
		}
		out = append(out, c)
	}
	return out
}

// Find returns the categories whose name or subreddits match query, case-insensitively.
//
// A matching category name keeps all of its subreddits; otherwise only the matching ones are kept.
func Find(query string) []Category {
	query = strings.ToLower(strings.TrimSpace(query))
	all := Categories()
	if query == "" {
		return all
	}

	var out []Category
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Name), query) {
			out = append(out, c)
			continue
		}
		matched := slices.DeleteFunc(slices.Clone(c.Subreddits), func(s Subreddit) bool {
			return !strings.Contains(strings.ToLower(s.Name), query)
		})
		if len(matched) > 0 {
			out = append(out, Category{Name: c.Name, Subreddits: matched})
		}
	}
	return out
}

// Names lists every distinct subreddit name in the catalogue, sorted case-insensitively.
func Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, g := range groups {
		for _, n := range g.names {
			key := strings.ToLower(n)
			if seen[key] {
				continue
			}
			seen[key] = true
			names = append(names, n)
		}
	}
	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return names
}
