// Command tachyfontd drives one Font Manager from the command line: it
// opens (or fetches) a font's base, loads the characters given on stdin,
// and reports how many distinct code points it read and passed to
// LoadChars.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Shea690901/TachyFont/backend"
	"github.com/Shea690901/TachyFont/cmap"
	"github.com/Shea690901/TachyFont/face"
	"github.com/Shea690901/TachyFont/manager"
	"github.com/Shea690901/TachyFont/store"
)

func main() {
	family := flag.String("family", "NotoSansCJK", "font family name")
	weight := flag.String("weight", "400", "font weight")
	urlBase := flag.String("url", "", "backend URL base (required)")
	storeDir := flag.String("store", "", "directory for persisted base/charlist (required)")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	if *urlBase == "" || *storeDir == "" {
		fmt.Fprintln(os.Stderr, "usage: tachyfontd -url=... -store=... [text read from stdin]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	log := logrus.NewEntry(logrus.StandardLogger())

	st, err := store.OpenFileStore(*storeDir, "incrfonts/"+*family, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	be := backend.NewHTTPService(&http.Client{Timeout: *timeout}, log)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	m, err := manager.New(ctx,
		backend.FontInfo{Family: *family, Weight: *weight, URLBase: *urlBase},
		cmap.Mapping{}, // a real deployment supplies the build step's mapping here
		be, st, face.NewNullBinder(log), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening font manager: %v\n", err)
		os.Exit(1)
	}
	defer m.Close()

	chars := readChars(os.Stdin)
	if len(chars) == 0 {
		fmt.Fprintln(os.Stderr, "no characters read from stdin")
		os.Exit(1)
	}

	if err := m.LoadChars(ctx, chars); err != nil {
		fmt.Fprintf(os.Stderr, "loading chars: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("requested %d distinct code points for %s/%s\n", len(chars), *family, *weight)
}

func readChars(f *os.File) []rune {
	seen := make(map[rune]struct{})
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var out []rune
	for scanner.Scan() {
		for _, r := range scanner.Text() {
			if _, ok := seen[r]; !ok {
				seen[r] = struct{}{}
				out = append(out, r)
			}
		}
	}
	return out
}
