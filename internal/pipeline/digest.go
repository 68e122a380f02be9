package pipeline

import (
	"fmt"
	"html"
	"strings"

	"github.com/book-expert/bulletin-service/internal/core"
)

// Digest renders the HTML text digest of one source.
func Digest(source string, groups []core.TopicGroup) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "📰 <b>%s</b> — Destaques por assunto:\n", html.EscapeString(source))

	for _, group := range groups {
		fmt.Fprintf(&builder, "\n<u><b>%s</b></u>\n", html.EscapeString(group.Topic))

		for _, item := range group.Items {
			title := item.TitleTranslated
			if strings.TrimSpace(title) == "" {
				title = item.Title
			}

			fmt.Fprintf(&builder, "• <b>%s</b>\n🔗 %s\n", html.EscapeString(title), html.EscapeString(item.Link))
		}
	}

	return strings.TrimRight(builder.String(), "\n")
}
