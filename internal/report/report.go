// Package report renders a plain text analysis of a simulation run.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"manasim/internal/sim"
)

// Header identifies the run a report describes.
type Header struct {
	Commander   string
	Simulations int
	Generated   time.Time
}

var rule = strings.Repeat("=", 80)

// Write renders the report for stats to w.
func Write(w io.Writer, h Header, stats *sim.Stats) error {
	var b strings.Builder

	s := stats.Summary()
	rating := Rate(s)
	early, late := Early(stats), Late(stats)
	bestTurn, bestCast := BestTurn(stats)

	section := func(title string) {
		fmt.Fprintf(&b, "\n%s\n%s\n%s\n\n", rule, title, rule)
	}

	fmt.Fprintf(&b, "%s\nSIMULATION REPORT - %s\n%s\n", rule, h.Commander, rule)
	fmt.Fprintf(&b, "Generated: %s\n", h.Generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Simulations: %d games | Turns Analyzed: %d\n", h.Simulations, stats.Turns())

	section("OVERALL PERFORMANCE")
	b.WriteString("Game State Distribution:\n")
	fmt.Fprintf(&b, "  Mana Screw:  %6.2f%%  (Unable to cast spells)\n", s.ScrewRate*100)
	fmt.Fprintf(&b, "  Mana Flood:  %6.2f%%  (Excess mana wasted)\n", s.FloodRate*100)
	fmt.Fprintf(&b, "  Normal:      %6.2f%%  (Efficient gameplay)\n\n", s.OKRate*100)
	b.WriteString("Gameplay Metrics:\n")
	fmt.Fprintf(&b, "  Average Cards Cast per Turn:     %.2f\n", s.AvgCardsCast)
	fmt.Fprintf(&b, "  Average Mana Efficiency:         %.1f%%\n", s.ManaEfficiency*100)
	fmt.Fprintf(&b, "  Average Hand Size:               %.1f cards\n\n", s.AvgHandSize)
	b.WriteString("Deck Classification:\n")
	fmt.Fprintf(&b, "  Consistency Rating:  %s\n", rating.Consistency)
	fmt.Fprintf(&b, "  Speed Rating:        %s\n", rating.Speed)

	section("TEMPORAL ANALYSIS")
	fmt.Fprintf(&b, "Early Game (Turns 1-%d):\n", earlyTurns)
	fmt.Fprintf(&b, "  Screw Rate:  %.1f%%\n  Flood Rate:  %.1f%%\n\n", early.Screw*100, early.Flood*100)
	fmt.Fprintf(&b, "Late Game (Turn %d+):\n", lateFirstTurn)
	fmt.Fprintf(&b, "  Screw Rate:  %.1f%%\n  Flood Rate:  %.1f%%\n\n", late.Screw*100, late.Flood*100)
	b.WriteString("Peak Performance:\n")
	fmt.Fprintf(&b, "  Best Turn: Turn %d (%.2f cards cast on average)\n", bestTurn, bestCast)

	section("TURN-BY-TURN BREAKDOWN")
	b.WriteString("Turn | Screw | Flood | Normal | Avg Cast | Mana Avail | Mana Spent | Efficiency\n")
	b.WriteString("-----|-------|-------|--------|----------|------------|------------|------------\n")
	for i := 0; i < stats.Turns(); i++ {
		avail, spent := stats.AvgManaAvailable[i], stats.AvgManaSpent[i]
		eff := 0.0
		if avail > 0 {
			eff = spent / avail * 100
		}
		fmt.Fprintf(&b, " %2d  | %5.1f | %5.1f | %6.1f | %8.2f | %10.1f | %10.1f | %9.1f%%\n",
			i+1, stats.Screw[i]*100, stats.Flood[i]*100, stats.OK[i]*100,
			stats.AvgCardsCast[i], avail, spent, eff)
	}

	section("ANALYSIS & RECOMMENDATIONS")
	if len(rating.Issues) > 0 {
		b.WriteString("Issues Detected:\n")
		for _, issue := range rating.Issues {
			fmt.Fprintf(&b, "  - %s\n", issue)
		}
	} else {
		b.WriteString("No major issues detected. Deck shows solid performance.\n")
	}
	b.WriteString("\nRecommendations:\n")
	for _, rec := range Recommendations(stats) {
		fmt.Fprintf(&b, "  - %s\n", rec)
	}

	section("EXAMPLE GAME TRACES")
	for i, trace := range stats.ExampleTraces {
		if i == exampleTraces {
			break
		}
		writeTrace(&b, i+1, trace)
	}

	fmt.Fprintf(&b, "%s\nEND OF REPORT\n%s\n", rule, rule)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTrace(b *strings.Builder, n int, trace sim.Trace) {
	fmt.Fprintf(b, "Game %d - Final Status: %s\n", n, strings.ToUpper(string(trace.FinalStatus)))
	b.WriteString(strings.Repeat("-", 80) + "\n")
	for i, t := range trace.Turns {
		if i == turnsPerTrace {
			break
		}
		fmt.Fprintf(b, "\nTurn %d: %s\n", t.Turn, strings.ToUpper(string(t.Status)))
		fmt.Fprintf(b, "  Cast: %d cards | Mana: %d/%d | Hand: %d cards\n",
			t.CardsCast, t.ManaSpent, t.ManaAvailable, len(t.Hand))
		if len(t.PlayedCards) > 0 {
			fmt.Fprintf(b, "  Played: %s\n", strings.Join(t.PlayedCards, ", "))
		}
		if len(t.Hand) > 0 {
			preview := strings.Join(t.Hand[:min(len(t.Hand), handPreviewLen)], ", ")
			if extra := len(t.Hand) - handPreviewLen; extra > 0 {
				preview += fmt.Sprintf(", ... +%d more", extra)
			}
			fmt.Fprintf(b, "  Hand: %s\n", preview)
		}
		if len(t.Battlefield) > 0 {
			fmt.Fprintf(b, "  Battlefield: %d permanents\n", len(t.Battlefield))
		}
	}
	b.WriteString("\n")
}
