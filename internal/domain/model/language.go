package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type Language struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"` // For CLI usage
	Extension  string `json:"extension"`
	Plagiarism bool   `json:"plagiarism"` // supported by the similarity service
}

// languages is the single id table used for display, validation and the
// plagiarism filter. Ids follow the execution service's numbering.
var languages = map[int]Language{
	48: {ID: 48, Name: "C (GCC 7.4.0)", Slug: "c-gcc7", Extension: ".c", Plagiarism: true},
	50: {ID: 50, Name: "C (GCC 9.2.0)", Slug: "c", Extension: ".c", Plagiarism: false},
	52: {ID: 52, Name: "C++ (GCC 7.4.0)", Slug: "cpp-gcc7", Extension: ".cpp", Plagiarism: true},
	53: {ID: 53, Name: "C++ (GCC 8.3.0)", Slug: "cpp-gcc8", Extension: ".cpp", Plagiarism: true},
	54: {ID: 54, Name: "C++ (GCC 9.2.0)", Slug: "cpp", Extension: ".cpp", Plagiarism: true},
	60: {ID: 60, Name: "Go (1.13.5)", Slug: "go", Extension: ".go", Plagiarism: true},
	62: {ID: 62, Name: "Java (OpenJDK 13.0.1)", Slug: "java", Extension: ".java", Plagiarism: true},
	63: {ID: 63, Name: "JavaScript (Node.js 12.14.0)", Slug: "javascript", Extension: ".js", Plagiarism: true},
	71: {ID: 71, Name: "Python (3.8.1)", Slug: "python", Extension: ".py", Plagiarism: true},
}

// DefaultLanguageID is Python 3, the editor default.
const DefaultLanguageID = 71

func LookupLanguage(id int) (Language, bool) {
	l, ok := languages[id]
	return l, ok
}

// ParseLanguage resolves a numeric id, slug or file extension.
func ParseLanguage(ref string) (Language, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if id, err := strconv.Atoi(ref); err == nil {
		if l, ok := languages[id]; ok {
			return l, nil
		}
		return Language{}, fmt.Errorf("unknown language id %d", id)
	}
	var byExt *Language
	for _, l := range Languages() {
		if l.Slug == ref {
			return l, nil
		}
		if l.Extension == ref || "."+ref == l.Extension {
			// newest toolchain wins for shared extensions
			l := l
			byExt = &l
		}
	}
	if byExt != nil {
		return *byExt, nil
	}
	return Language{}, fmt.Errorf("unknown language %q", ref)
}

// Languages returns the table ordered by id.
func Languages() []Language {
	out := make([]Language, 0, len(languages))
	for _, l := range languages {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
