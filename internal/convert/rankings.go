package convert

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/mcoot/draftboard/internal/model"
)

// Columns read from a FantasyPros ranking export
const (
	ColumnRank     = "RK"
	ColumnTier     = "TIERS"
	ColumnName     = "PLAYER NAME"
	ColumnPosition = "POS"
)

var (
	suffixPattern   = regexp.MustCompile(`\s+(Jr\.|Sr\.|II|III|IV|V|VI|VII|VIII|IX|X)\s*$`)
	positionNumbers = regexp.MustCompile(`\d+$`)

	// nameAliases maps ranking names to the name the roster uses
	nameAliases = map[string]string{
		"Marquise Brown": "Hollywood Brown",
	}
)

// CleanName normalises a ranking name so it matches the roster: aliases are
// applied, otherwise generational suffixes are dropped
func CleanName(name string) string {
	name = strings.TrimSpace(norm.NFC.String(name))
	if alias, ok := nameAliases[name]; ok {
		return alias
	}
	return strings.TrimSpace(suffixPattern.ReplaceAllString(name, ""))
}

// CleanPosition drops the positional rank ("RB12" -> "RB") and maps DST to DEF
func CleanPosition(pos string) model.Position {
	pos = positionNumbers.ReplaceAllString(strings.TrimSpace(pos), "")
	if pos == "DST" {
		return model.PositionDEF
	}
	return model.Position(pos)
}

// skipBOM drops the byte order mark spreadsheet exports often start with
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if ch, _, err := br.ReadRune(); err == nil && ch != '\ufeff' {
		_ = br.UnreadRune()
	}
	return br
}

// ParseRankingsCSV reads a ranking export. Rows come back sorted by rank.
func ParseRankingsCSV(r io.Reader) ([]model.RankedPlayer, error) {
	reader := csv.NewReader(skipBOM(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("rankings csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	idx := make(map[string]int, 4)
	for _, name := range []string{ColumnRank, ColumnTier, ColumnName, ColumnPosition} {
		i, ok := columns[name]
		if !ok {
			return nil, fmt.Errorf("rankings csv has no %q column", name)
		}
		idx[name] = i
	}

	var players []model.RankedPlayer
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read rankings: %w", err)
		}
		line, _ := reader.FieldPos(0)

		field := func(name string) string {
			if i := idx[name]; i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		rank, err := strconv.Atoi(field(ColumnRank))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid rank %q", line, field(ColumnRank))
		}
		tier, err := strconv.Atoi(field(ColumnTier))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid tier %q", line, field(ColumnTier))
		}
		name := CleanName(field(ColumnName))
		if name == "" {
			return nil, fmt.Errorf("line %d: missing player name", line)
		}

		players = append(players, model.RankedPlayer{
			Rank:     rank,
			Tier:     tier,
			Name:     name,
			Position: CleanPosition(field(ColumnPosition)),
		})
	}

	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Rank < players[j].Rank
	})
	return players, nil
}

// MarshalRankings encodes a rankings file
func MarshalRankings(players []model.RankedPlayer) ([]byte, error) {
	if players == nil {
		players = []model.RankedPlayer{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(players); err != nil {
		return nil, fmt.Errorf("encode rankings: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteRankingsSummary prints how many players were converted and the first few
func WriteRankingsSummary(w io.Writer, players []model.RankedPlayer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Successfully converted %d players\n", len(players))
	b.WriteString("Sample output (cleaned names):\n")
	for _, p := range players[:min(5, len(players))] {
		fmt.Fprintf(&b, "%d. %s (%s) - Tier %d\n", p.Rank, p.Name, p.Position, p.Tier)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// ConvertRankingsFile converts the ranking export at in into a rankings file at out
func ConvertRankingsFile(in, out string) ([]model.RankedPlayer, error) {
	f, err := os.Open(in)
	if err != nil {
		return nil, fmt.Errorf("open rankings csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	players, err := ParseRankingsCSV(f)
	if err != nil {
		return nil, err
	}

	data, err := MarshalRankings(players)
	if err != nil {
		return nil, err
	}
	if err := WriteFile(out, data); err != nil {
		return nil, err
	}
	return players, nil
}
