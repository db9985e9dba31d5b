package file

import (
	"bufio"
	"os"
	"strings"
)

// ReadList reads a text file naming one batch file or URL per line, in
// order. Blank lines and lines starting with '#' are skipped, so list
// files can carry comments and separators.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
