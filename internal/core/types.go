package core

import "time"

// Entry is a raw feed entry before enrichment.
type Entry struct {
	ID      string
	Title   string
	Link    string
	Summary string
}

// Item is a collected news item carrying both original and translated fields.
type Item struct {
	ID                string
	Title             string
	Link              string
	Summary           string
	TitleTranslated   string
	SummaryTranslated string
	Source            string
	Language          string
}

// TopicGroup holds the items assigned to one topic, in arrival order.
type TopicGroup struct {
	Topic string
	Items []Item
}

// Source describes one news outlet and the feeds it publishes.
type Source struct {
	Name     string   `yaml:"name"`
	Language string   `yaml:"lang"`
	URLs     []string `yaml:"urls"`
	Limit    int      `yaml:"limit"`
}

// Bulletin is an assembled audio file ready for delivery.
type Bulletin struct {
	Source    string
	Title     string
	Performer string
	Filename  string
	Voice     string
	Audio     []byte
	Duration  time.Duration
}
