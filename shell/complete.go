package shell

import (
	"slices"
	"strings"
)

// pathCommands take vfs paths as arguments
var pathCommands = map[string]bool{"cd": true, "ls": true, "cat": true}

// complete proposes replacements for the last word of line
func (s *Shell) complete(line string) []string {
	words := strings.Fields(line)
	if len(words) == 0 || (len(words) == 1 && !strings.HasSuffix(line, " ")) {
		prefix := ""
		if len(words) == 1 {
			prefix = words[0]
		}
		var out []string
		for _, name := range s.Commands() {
			if strings.HasPrefix(name, prefix) {
				out = append(out, name)
			}
		}
		if len(out) == 1 {
			out[0] += " "
		}
		return out
	}
	if !pathCommands[words[0]] {
		return nil
	}
	word := ""
	if !strings.HasSuffix(line, " ") {
		word = words[len(words)-1]
	}
	return s.completePath(word)
}

// completePath lists children of the directory part of word that start
// with its last component; directories end in a slash
func (s *Shell) completePath(word string) []string {
	dir, base := "", word
	if i := strings.LastIndexByte(word, '/'); i >= 0 {
		dir, base = word[:i+1], word[i+1:]
	}
	target := dir
	if target == "" {
		target = "."
	}
	_, node, err := s.fs.Resolve(s.state.Cwd, target)
	if err != nil || !node.IsDir() {
		return nil
	}
	var out []string
	for _, c := range node.Children {
		if !strings.HasPrefix(c.Name, base) {
			continue
		}
		name := dir + c.Name
		if c.IsDir() {
			name += "/"
		} else {
			name += " "
		}
		out = append(out, name)
	}
	if len(out) > 1 {
		for i := range out {
			out[i] = strings.TrimSuffix(out[i], " ")
		}
		slices.Sort(out)
	}
	return out
}
