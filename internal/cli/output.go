package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mcoot/draftboard/internal/api/response"
)

// Output formats
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == OutputJSON {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == OutputJSON {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case *response.Health:
		o.printHealth(v)
	case *response.Session:
		o.printSession(v)
	case *response.SessionList:
		o.printSessionList(v)
	case *response.Board:
		o.printBoard(v)
	case *response.PickList:
		o.printPicks(v.Picks)
	case *response.AvailableList:
		o.printAvailable(v.Available)
	case *response.Player:
		o.printPlayer(v)
	case *response.RankingList:
		o.printRankings(v.Rankings)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func filterLabel(f string) string {
	if f == "" {
		return "all"
	}
	return f
}

func (o *Output) table() *tabwriter.Writer {
	return tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
}

func (o *Output) printHealth(h *response.Health) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Roster: %s (%d players)\n", yesNo(h.RosterLoaded), h.RosterPlayers)
	fmt.Fprintf(o.w, "Rankings: %s (%d players)\n", yesNo(h.RankingsLoaded), h.Rankings)
	fmt.Fprintf(o.w, "Sessions: %d\n", h.Sessions)
}

func (o *Output) printSession(s *response.Session) {
	fmt.Fprintf(o.w, "Session: %s\n", s.Code)
	fmt.Fprintf(o.w, "Draft: %s\n", s.DraftID)
	fmt.Fprintf(o.w, "Filter: %s\n", filterLabel(s.Filter))
	fmt.Fprintf(o.w, "State: %s (generation %d)\n", s.State, s.Generation)
	if s.LastRefreshAt != nil {
		fmt.Fprintf(o.w, "Last refresh: %s\n", s.LastRefreshAt.Format(time.RFC3339))
	}
	if s.LastError != "" {
		fmt.Fprintf(o.w, "Last error: %s\n", s.LastError)
	}
}

func (o *Output) printSessionList(l *response.SessionList) {
	if len(l.Sessions) == 0 {
		fmt.Fprintln(o.w, "No sessions")
		return
	}

	tw := o.table()
	fmt.Fprintln(tw, "CODE\tDRAFT\tFILTER\tSTATE\tGENERATION")
	for _, s := range l.Sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", s.Code, s.DraftID, filterLabel(s.Filter), s.State, s.Generation)
	}
	_ = tw.Flush()
}

func (o *Output) printBoard(b *response.Board) {
	draft := b.DraftID
	if b.DraftName != "" {
		draft = fmt.Sprintf("%s (%s)", b.DraftName, b.DraftID)
	}
	fmt.Fprintf(o.w, "Session: %s\n", b.SessionCode)
	fmt.Fprintf(o.w, "Draft: %s\n", draft)
	fmt.Fprintf(o.w, "Filter: %s\n", filterLabel(b.Filter))
	fmt.Fprintf(o.w, "%s\n", b.Status.Message)

	fmt.Fprintf(o.w, "\nDrafted (%d):\n", len(b.Picks))
	o.printPicks(b.Picks)

	fmt.Fprintf(o.w, "\nAvailable (%d):\n", len(b.Available))
	o.printAvailable(b.Available)
}

func (o *Output) printPicks(picks []response.Pick) {
	if len(picks) == 0 {
		fmt.Fprintln(o.w, "  No picks yet")
		return
	}

	tw := o.table()
	fmt.Fprintln(tw, "PICK\tPLAYER\tPOS\tTEAM")
	for _, p := range picks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.PickNo, p.Name, p.Position, p.Team)
	}
	_ = tw.Flush()
}

func (o *Output) printAvailable(players []response.AvailablePlayer) {
	if len(players) == 0 {
		fmt.Fprintln(o.w, "  No players available")
		return
	}

	tw := o.table()
	fmt.Fprintln(tw, "RANK\tTIER\tPLAYER\tPOS\tID")
	for _, p := range players {
		name := p.Name
		if p.Favorite {
			name = "* " + name
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", p.Rank, p.Tier, name, p.Position, p.DisplayID)
	}
	_ = tw.Flush()
}

func (o *Output) printPlayer(p *response.Player) {
	team := "free agent"
	if p.Team != nil {
		team = *p.Team
	}
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.FullName, p.PlayerID)
	fmt.Fprintf(o.w, "Team: %s\n", team)
	fmt.Fprintf(o.w, "Position: %s\n", p.Position)
	fmt.Fprintf(o.w, "Fantasy positions: %s\n", strings.Join(p.FantasyPositions, ", "))
}

func (o *Output) printRankings(rankings []response.Ranking) {
	if len(rankings) == 0 {
		fmt.Fprintln(o.w, "No rankings")
		return
	}

	tw := o.table()
	fmt.Fprintln(tw, "RANK\tTIER\tPLAYER\tPOS\tID")
	for _, r := range rankings {
		id := r.PlayerID
		if !r.Resolved {
			id = "Not found"
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", r.Rank, r.Tier, r.Name, r.Position, id)
	}
	_ = tw.Flush()
}
