package scraper

import (
	"context"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// stopwords ignored when ranking content keywords, per site language
var stopwords = map[string][]string{
	"es": {"de", "la", "el", "en", "y", "a", "los", "las", "del", "con", "para",
		"un", "una", "por", "que", "se", "su", "al", "es", "lo", "como",
		"más", "o", "pero", "sus", "le", "ya", "este", "ha", "me", "si",
		"porque", "esta", "son", "entre", "cuando", "muy", "sin", "sobre",
		"también", "ser", "hay", "puede", "todos", "así", "nos", "ni"},
	"fr": {"de", "la", "le", "et", "en", "un", "une", "du", "des", "les", "est",
		"dans", "que", "pour", "au", "sur", "par", "pas", "plus", "avec"},
	"en": {"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
		"of", "with", "by", "from", "as", "is", "was", "are", "were", "been"},
}

var nonWordChars = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// KeywordCount is one ranked keyword candidate from a page
type KeywordCount struct {
	Keyword   string `json:"keyword"`
	Frequency int    `json:"frequency"`
}

// Analysis is what AnalyzeWebsite pulls out of a single page
type Analysis struct {
	MetaKeywords      []string       `json:"meta_keywords"`
	MetaDescription   string         `json:"meta_description"`
	Title             string         `json:"title"`
	H1Tags            []string       `json:"h1_tags"`
	H2Tags            []string       `json:"h2_tags"`
	SuggestedKeywords []KeywordCount `json:"suggested_keywords"`
}

// KeywordAnalyzer extracts keyword candidates from lead websites
type KeywordAnalyzer struct {
	client    *http.Client
	userAgent string
}

// NewKeywordAnalyzer creates an analyzer with the given HTTP timeout
func NewKeywordAnalyzer(client *http.Client, userAgent string) *KeywordAnalyzer {
	return &KeywordAnalyzer{client: client, userAgent: userAgent}
}

// AnalyzeWebsite fetches a page and extracts meta keywords, headings and a
// frequency-ranked keyword list from the prominent text.
func (a *KeywordAnalyzer) AnalyzeWebsite(ctx context.Context, pageURL, language string) (*Analysis, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errNotHTML
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{
		MetaKeywords: []string{},
		H1Tags:       []string{},
		H2Tags:       []string{},
	}

	if content, ok := doc.Find(`meta[name="keywords"]`).Attr("content"); ok {
		for _, kw := range strings.Split(content, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				analysis.MetaKeywords = append(analysis.MetaKeywords, kw)
			}
		}
	}
	if content, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		analysis.MetaDescription = content
	}
	analysis.Title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("h1").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			analysis.H1Tags = append(analysis.H1Tags, text)
		}
		return i < 2
	})
	doc.Find("h2").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			analysis.H2Tags = append(analysis.H2Tags, text)
		}
		return i < 4
	})

	prominent := strings.Join([]string{
		analysis.MetaDescription,
		analysis.Title,
		strings.Join(analysis.H1Tags, " "),
		strings.Join(analysis.H2Tags, " "),
	}, " ")
	analysis.SuggestedKeywords = RankKeywords(prominent, language)

	return analysis, nil
}

// RankKeywords tokenizes text, drops stopwords and short words, and returns
// the top words by frequency.
func RankKeywords(text, language string) []KeywordCount {
	text = nonWordChars.ReplaceAllString(strings.ToLower(text), " ")

	ignore := make(map[string]struct{})
	words, ok := stopwords[language]
	if !ok {
		words = stopwords["es"]
	}
	for _, w := range words {
		ignore[w] = struct{}{}
	}

	freq := make(map[string]int)
	for _, word := range strings.Fields(text) {
		if len([]rune(word)) <= 3 {
			continue
		}
		if _, skip := ignore[word]; skip {
			continue
		}
		freq[word]++
	}

	ranked := make([]KeywordCount, 0, len(freq))
	for word, count := range freq {
		ranked = append(ranked, KeywordCount{Keyword: word, Frequency: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Frequency != ranked[j].Frequency {
			return ranked[i].Frequency > ranked[j].Frequency
		}
		return ranked[i].Keyword < ranked[j].Keyword
	})

	if len(ranked) > 20 {
		ranked = ranked[:20]
	}
	return ranked
}
