package topic

import (
	"errors"

	"github.com/book-expert/bulletin-service/internal/core"
)

// DefaultMaxItemsPerTopic is the default per-topic cap.
const DefaultMaxItemsPerTopic = 4

// ErrClassifierNil indicates a grouper without a classifier.
var ErrClassifierNil = errors.New("topic classifier cannot be nil")

// DefaultOrder is the narration order of topics.
func DefaultOrder() []string {
	return []string{Politics, Economy, World, Technology, Business, Health, Sports, Culture, Science, Other}
}

// Grouper buckets items by topic with a per-topic cap.
type Grouper struct {
	classifier Classifier
	maxItems   int
	order      []string
}

// NewGrouper creates a grouper. A non-positive cap uses DefaultMaxItemsPerTopic and an
// empty order uses DefaultOrder.
func NewGrouper(classifier Classifier, maxItems int, order []string) (*Grouper, error) {
	if classifier == nil {
		return nil, ErrClassifierNil
	}

	if maxItems <= 0 {
		maxItems = DefaultMaxItemsPerTopic
	}

	if len(order) == 0 {
		order = DefaultOrder()
	}

	return &Grouper{classifier: classifier, maxItems: maxItems, order: append([]string(nil), order...)}, nil
}

// Group classifies items in arrival order. An item whose topic is full is dropped, never
// reassigned. Groups follow the priority order; labels outside it come last in first-seen
// order. Empty topics are omitted.
func (g *Grouper) Group(items []core.Item) []core.TopicGroup {
	buckets := make(map[string][]core.Item)

	var seen []string

	for _, item := range items {
		label := g.classifier.Classify(narrationTitle(item), narrationSummary(item))

		if _, ok := buckets[label]; !ok {
			seen = append(seen, label)
		}

		if len(buckets[label]) < g.maxItems {
			buckets[label] = append(buckets[label], item)
		}
	}

	groups := make([]core.TopicGroup, 0, len(buckets))
	placed := make(map[string]bool, len(g.order))

	for _, label := range g.order {
		placed[label] = true

		if len(buckets[label]) > 0 {
			groups = append(groups, core.TopicGroup{Topic: label, Items: buckets[label]})
		}
	}

	for _, label := range seen {
		if !placed[label] && len(buckets[label]) > 0 {
			groups = append(groups, core.TopicGroup{Topic: label, Items: buckets[label]})
		}
	}

	return groups
}

func narrationTitle(item core.Item) string {
	if item.TitleTranslated != "" {
		return item.TitleTranslated
	}

	return item.Title
}

func narrationSummary(item core.Item) string {
	if item.SummaryTranslated != "" {
		return item.SummaryTranslated
	}

	return item.Summary
}
