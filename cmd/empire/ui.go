package main

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"rentalempire/internal/game"
	"rentalempire/internal/notify"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
	muted       = color.New(color.FgHiBlack)
)

func init() {
	if !stdoutIsTerminal() {
		color.NoColor = true
	}
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptChoice(label string, options []string, defaultValue string) (string, error) {
	normalized := make(map[string]struct{}, len(options))
	for _, opt := range options {
		normalized[strings.ToLower(strings.TrimSpace(opt))] = struct{}{}
	}
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			text = strings.ToLower(strings.TrimSpace(defaultValue))
		}
		if _, ok := normalized[text]; ok {
			return text, nil
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

func renderLedger(l game.LedgerView, tiers []game.TierView) {
	name := fmt.Sprintf("Level %d", l.TierIndex)
	for _, t := range tiers {
		if t.Current {
			name = fmt.Sprintf("Level %d: %s", t.Level, t.Name)
		}
	}
	state := danger.Sprint("paused")
	if l.Running {
		state = success.Sprint("running")
	}

	accent.Printf("\n== RENTAL EMPIRE (%s) ==\n", name)
	fmt.Printf("Balance:          $%s\n", money(l.Balance))
	fmt.Printf("Revenue:          $%s/s\n", money(l.RevenuePerInterval))
	fmt.Printf("Lifetime Earned:  $%s\n", money(l.LifetimeEarned))
	if l.NextTierThreshold > 0 {
		fmt.Printf("Next Level At:    $%s/s %s\n", money(l.NextTierThreshold), progress(l.RevenuePerInterval, l.NextTierThreshold))
	} else {
		fmt.Printf("Next Level At:    %s\n", success.Sprint("max level reached"))
	}
	fmt.Printf("Game:             %s\n", state)
	if !l.LastSavedAt.IsZero() {
		fmt.Printf("Last Saved:       %s\n", l.LastSavedAt.Local().Format(time.DateTime))
	}
	fmt.Println()
}

func renderAssets(v game.AssetsView, ownedOnly bool) {
	accent.Println("\nEquipment")
	fmt.Printf("%-16s %-28s %10s %10s %8s %6s %6s %12s\n", "ID", "NAME", "PRICE", "REV/S", "SELL", "OWNED", "LEVEL", "LEVEL COST")
	shown := 0
	for _, a := range v.Catalog {
		if ownedOnly && a.Count == 0 {
			continue
		}
		shown++
		line := fmt.Sprintf("%-16s %-28s %10s %10s %8s %6d %6s %12s",
			truncate(a.ID, 16),
			truncate(a.Name, 28),
			money(a.Price),
			money(a.BaseRevenue),
			money(a.SellValue),
			a.Count,
			levelText(a.Level),
			costText(a.LevelCost),
		)
		switch {
		case a.Count > 0:
			success.Println(line)
		case !a.Available:
			muted.Println(line + "  locked until $" + unlockText(a.Unlock))
		default:
			fmt.Println(line)
		}
	}
	if shown == 0 {
		printInfo("No equipment yet. Try `empire buy excavator`.")
	}
	fmt.Println()
}

func renderPurchase(p game.PurchaseResult, verb string) {
	printSuccess(fmt.Sprintf("%s %s for $%s. Owned %d at level %d. Balance $%s.",
		verb, p.TypeID, money(p.Price), p.Count, p.Level, money(p.Balance)))
}

func renderSale(s game.SaleResult) {
	msg := fmt.Sprintf("Sold %s for $%s. %d left. Balance $%s.", s.TypeID, money(s.Proceeds), s.Count, money(s.Balance))
	if s.Count == 0 {
		printWarn(msg + " Levels on this type are gone.")
		return
	}
	printSuccess(msg)
}

func renderUpgrades(ups []game.Upgrade) {
	accent.Println("\nUpgrades")
	fmt.Printf("%-22s %-30s %10s %6s  %s\n", "ID", "NAME", "COST", "MULT", "STATUS")
	for _, u := range ups {
		status := success.Sprint("available")
		switch {
		case u.Purchased:
			status = neutral.Sprint("owned")
		case u.Unlock != nil:
			status = muted.Sprint("locked: " + u.Unlock.Description)
		}
		fmt.Printf("%-22s %-30s %10s %5.2fx  %s\n", truncate(u.ID, 22), truncate(u.Name, 30), money(u.Cost), u.Multiplier, status)
	}
	fmt.Println()
}

func renderMarket(m game.MarketView) {
	accent.Println("\nMarket")
	mods := m.EffectiveModifiers
	fmt.Printf("Revenue Bonus:     %s\n", colorizePercent(mods.RevenueBonus*100))
	fmt.Printf("Price Multiplier:  %.2fx\n", mods.PriceMultiplier)
	fmt.Printf("Progression Bonus: %s\n", colorizePercent(mods.ProgressionBonus*100))
	fmt.Println()
	fmt.Printf("%-34s %-34s %8s  %s\n", "ID", "NAME", "LENGTH", "STATUS")
	for _, ev := range m.Events {
		status := muted.Sprint("idle")
		if ev.Active {
			status = success.Sprint("active")
			if ev.EndTime != nil {
				status += fmt.Sprintf(" until %s", ev.EndTime.Local().Format(time.Kitchen))
			}
		}
		fmt.Printf("%-34s %-34s %7ds  %s\n", truncate(ev.ID, 34), truncate(ev.Name, 34), ev.DurationSeconds, status)
	}
	fmt.Println()
}

func renderAchievements(achs []game.Achievement) {
	accent.Println("\nAchievements")
	done := 0
	for _, a := range achs {
		if a.Completed {
			done++
			success.Printf("  [x] %-24s %s\n", a.Name, rewardText(a.Reward))
			continue
		}
		fmt.Printf("  [ ] %-24s %s\n", a.Name, muted.Sprint(a.Description))
	}
	fmt.Printf("\n%d of %d completed\n\n", done, len(achs))
}

func renderTiers(tiers []game.TierView) {
	accent.Println("\nBusiness Levels")
	for _, t := range tiers {
		marker := "  "
		if t.Current {
			marker = "> "
		}
		line := fmt.Sprintf("%s%d %-22s needs $%s/s and %d assets", marker, t.Level, t.Name, money(t.RevenueRequirement), t.AssetRequirement)
		if t.Reached {
			success.Println(line)
		} else {
			fmt.Println(line)
		}
	}
	fmt.Println()
}

func renderNotifications(notes []notify.Notification) {
	if len(notes) == 0 {
		printInfo("No notifications yet.")
		return
	}
	for _, n := range notes {
		stamp := muted.Sprint(n.CreatedAt.Local().Format(time.TimeOnly))
		switch n.Severity {
		case game.SeveritySuccess:
			fmt.Println(stamp, success.Sprint(n.Message))
		case game.SeverityWarning:
			fmt.Println(stamp, warn.Sprint(n.Message))
		case game.SeverityError:
			fmt.Println(stamp, danger.Sprint(n.Message))
		default:
			fmt.Println(stamp, n.Message)
		}
	}
}

func rewardText(r game.Reward) string {
	if r.Kind == game.RewardMultiplier {
		return fmt.Sprintf("+%.0f%% revenue", r.Amount*100)
	}
	return "+$" + money(r.Amount)
}

func unlockText(u *game.AssetUnlock) string {
	if u == nil {
		return "0"
	}
	return money(u.Currency)
}

func levelText(level int) string {
	if level == 0 {
		return "-"
	}
	return strconv.Itoa(level)
}

func costText(cost float64) string {
	if cost <= 0 {
		return "-"
	}
	return money(cost)
}

func progress(have, want float64) string {
	if want <= 0 {
		return ""
	}
	pct := math.Min(100, have/want*100)
	return muted.Sprintf("(%.0f%%)", pct)
}

func colorizePercent(v float64) string {
	text := fmt.Sprintf("%+.1f%%", v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

// money renders whole dollars with thousands separators. Fractions are
// shown only below ten.
func money(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	if v < 10 && v != math.Trunc(v) {
		return fmt.Sprintf("%s%.2f", sign, v)
	}
	return sign + comma(int64(math.Floor(v)))
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
