package bot

import (
	"fmt"
	"strings"

	"github.com/dkazmin/pvzbot/internal/domain"
)

// Tables render as <pre> blocks so columns line up in the client.

func formatPointsTable(points []*domain.Point) string {
	var sb strings.Builder
	sb.WriteString("<b>Пункты выдачи:</b>\n<pre>")
	sb.WriteString(fmt.Sprintf("%-4s %-20s %-25s %s\n", "id", "название", "адрес", "рейтинг"))
	for _, p := range points {
		sb.WriteString(fmt.Sprintf("%-4d %-20s %-25s %.1f\n",
			p.ID, truncate(p.Name, 20), truncate(p.Address, 25), p.Rating))
	}
	sb.WriteString("</pre>")
	return sb.String()
}

func formatShiftsTable(shifts []*domain.Shift) string {
	var sb strings.Builder
	sb.WriteString("<b>Смены:</b>\n<pre>")
	sb.WriteString(fmt.Sprintf("%-4s %-8s %-10s %s\n", "id", "пункт", "дата", "работник"))
	for _, sh := range shifts {
		worker := "—"
		if sh.WorkerID != nil {
			worker = fmt.Sprintf("%d", *sh.WorkerID)
		}
		sb.WriteString(fmt.Sprintf("%-4d %-8d %-10s %s\n",
			sh.ID, sh.PointID, sh.Date.Format("02.01.2006"), worker))
	}
	sb.WriteString("</pre>")
	return sb.String()
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
