package habits

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitloop/internal/cli"
	"github.com/julianstephens/habitloop/internal/constants"
	apperrors "github.com/julianstephens/habitloop/internal/errors"
	"github.com/julianstephens/habitloop/internal/models"
)

const barWidth = 30

func bar(fraction float64) string {
	n := int(fraction*barWidth + 0.5)
	if n < 0 {
		n = 0
	}
	if n > barWidth {
		n = barWidth
	}
	return strings.Repeat("█", n) + cli.MutedStyle.Render(strings.Repeat("░", barWidth-n))
}

type HabitScoreCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Days  int    `help:"Number of days to show." default:"14"`
}

func (c *HabitScoreCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		return apperrors.InvalidArgument("--days must be positive")
	}
	if err := ctx.Open(); err != nil {
		return err
	}
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	today := ctx.Today()
	scores, err := h.Scores(today.Minus(c.Days-1), today, today)
	if err != nil {
		return err
	}
	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%s score", h.Name())))
	for _, s := range scores {
		fmt.Printf("  %s %s %5.1f%%\n", s.Timestamp, bar(s.Value), s.Value*100)
	}
	return nil
}

type HabitStreaksCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Limit int    `help:"Number of streaks to show." default:"${best_streaks}"`
}

func (c *HabitStreaksCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	today := ctx.Today()
	streaks, err := h.BestStreaks(c.Limit, today)
	if err != nil {
		return err
	}
	if len(streaks) == 0 {
		fmt.Println("No streaks yet.")
		return nil
	}

	longest := 0
	for _, s := range streaks {
		if s.Length() > longest {
			longest = s.Length()
		}
	}
	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%s best streaks", h.Name())))
	for _, s := range streaks {
		line := fmt.Sprintf("  %s → %s %s %d days", s.Start, s.End, bar(float64(s.Length())/float64(longest)), s.Length())
		if s.End == today {
			line += cli.SuccessStyle.Render(" (current)")
		}
		fmt.Println(line)
	}
	return nil
}

type HabitStatsCmd struct {
	Habit  string `arg:"" help:"Habit name or id."`
	Period string `help:"Grouping period." enum:"week,month,quarter,year" default:"month"`
	Limit  int    `help:"Number of periods to show." default:"6"`
}

var periods = map[string]models.TruncateField{
	"week":    models.TruncateWeek,
	"month":   models.TruncateMonth,
	"quarter": models.TruncateQuarter,
	"year":    models.TruncateYear,
}

func (c *HabitStatsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	data := h.Data()
	entries := h.Entries()
	field := periods[c.Period]
	sums := models.GroupedSum(entries, field, time.Sunday, data.IsNumerical())
	skips := models.CountSkippedDays(entries, field, time.Sunday)
	skipped := make(map[models.Timestamp]int, len(skips))
	for _, s := range skips {
		skipped[s.Timestamp] = s.Value
	}

	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%s per %s", data.Name, c.Period)))
	if len(sums) == 0 {
		fmt.Println("No entries recorded.")
		return nil
	}
	for i, s := range sums {
		if i == c.Limit {
			break
		}
		total := fmt.Sprintf("%d times", s.Value/constants.NumericalScale)
		if data.IsNumerical() {
			total = data.FormatValue(s.Value)
		}
		line := fmt.Sprintf("  %s  %s", s.Timestamp, total)
		if n := skipped[s.Timestamp]; n > 0 {
			line += cli.MutedStyle.Render(fmt.Sprintf("  (%d skipped)", n))
		}
		fmt.Println(line)
	}

	var byWeekday [7]int
	for _, counts := range h.WeekdayFrequency() {
		for wd, n := range counts {
			byWeekday[wd] += n
		}
	}
	fmt.Println()
	fmt.Println(cli.TitleStyle.Render("By weekday"))
	for wd, n := range byWeekday {
		value := fmt.Sprintf("%d", n)
		if data.IsNumerical() {
			value = data.FormatValue(n)
		}
		fmt.Printf("  %s  %s\n", time.Weekday(wd).String()[:3], value)
	}
	return nil
}
