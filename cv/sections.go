package cv

import (
	"strings"

	"github.com/tidwall/gjson"
)

// column maps a table header to a gjson path inside one record
type column struct {
	Header string
	Path   string
}

type section struct {
	Flag    string
	Key     string // top-level document key
	Title   string
	Help    string
	Columns []column
}

var sections = []section{
	{"social", "social", "Social", "links and handles", []column{
		{"Network", "network"}, {"Handle", "username"}, {"URL", "url"},
	}},
	{"bio", "bio", "Bio", "who I am", []column{
		{"Name", "name"}, {"Role", "title"}, {"Location", "location"}, {"About", "summary"},
	}},
	{"work-experience", "workExperience", "Work experience", "jobs, newest first", []column{
		{"Company", "company"}, {"Position", "position"}, {"From", "startDate"}, {"To", "endDate"}, {"Summary", "summary"},
	}},
	{"education", "education", "Education", "schools and degrees", []column{
		{"Institution", "institution"}, {"Degree", "degree"}, {"Field", "area"}, {"From", "startDate"}, {"To", "endDate"},
	}},
	{"skills", "skills", "Skills", "what I work with", []column{
		{"Skill", "name"}, {"Level", "level"}, {"Keywords", "keywords"},
	}},
	{"oss", "oss", "Open source", "projects, with download charts", []column{
		{"Project", "name"}, {"Language", "language"}, {"Description", "description"}, {"URL", "url"},
	}},
	{"publications", "publications", "Publications", "papers and articles", []column{
		{"Title", "name"}, {"Publisher", "publisher"}, {"Date", "releaseDate"},
	}},
	{"awards", "awards", "Awards", "prizes and recognition", []column{
		{"Award", "title"}, {"Awarder", "awarder"}, {"Date", "date"},
	}},
	{"hobbies", "hobbies", "Hobbies", "away from the keyboard", []column{
		{"Hobby", "name"}, {"Details", "description"},
	}},
	{"languages", "languages", "Languages", "spoken languages", []column{
		{"Language", "language"}, {"Fluency", "fluency"},
	}},
}

func lookupSection(flag string) (section, bool) {
	for _, s := range sections {
		if s.Flag == flag {
			return s, true
		}
	}
	return section{}, false
}

// cell renders one field; arrays are joined and an open end date reads present
func cell(rec gjson.Result, c column) string {
	v := rec.Get(c.Path)
	switch {
	case v.IsArray():
		var parts []string
		for _, e := range v.Array() {
			parts = append(parts, e.String())
		}
		return strings.Join(parts, ", ")
	case !v.Exists() && c.Path == "endDate":
		return "present"
	}
	return strings.Join(strings.Fields(v.String()), " ")
}

// rows extracts the table rows of a section from the document
func (s section) rows(doc gjson.Result) (header []string, rows [][]string) {
	for _, c := range s.Columns {
		header = append(header, c.Header)
	}
	for _, rec := range doc.Get(s.Key).Array() {
		row := make([]string, len(s.Columns))
		for i, c := range s.Columns {
			row[i] = cell(rec, c)
		}
		rows = append(rows, row)
	}
	return header, rows
}
