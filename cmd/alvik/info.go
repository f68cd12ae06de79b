package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hipsterbrown/feetech-servo/feetech"

	"github.com/gwillem/alvik/pkg/level"
	"github.com/gwillem/alvik/pkg/robot"
)

type InfoCommand struct {
	NoScan bool `long:"no-scan" description:"Only list ports, do not probe for servos"`
}

func (c *InfoCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Alvik Info"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━"))
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ports := listPorts()
	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		return nil
	}

	rows := make([][]string, 0, len(ports))
	for _, port := range ports {
		servos := "-"
		if !c.NoScan {
			if found, err := scanBus(port); err == nil && len(found) > 0 {
				servos = describeServos(found)
			}
		}
		rows = append(rows, []string{port, roleOf(port, cfg), servos})
	}

	fmt.Println(portTable(rows).Render())
	fmt.Println()

	if !c.NoScan && cfg.Drive.Port != "" {
		fmt.Println(subHeaderStyle.Render("Wheels"))
		fmt.Printf("  %s\n", wheelStatus(cfg))
		fmt.Println()
	}

	fmt.Println(subHeaderStyle.Render("Levels"))
	for _, l := range level.All() {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(l.Light.Hex())).Render("●")
		kind := ""
		if l.Demo {
			kind = dimStyle.Render(" (demo)")
		}
		fmt.Printf("  %s %-26s %s%s\n", swatch, l.Key, l.Title, kind)
	}
	return nil
}

// wheelStatus reads the wheel velocities back from the servos.
func wheelStatus(cfg level.Config) string {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	drive, err := robot.NewWheelDrive(ctx, cfg.Drive)
	if err != nil {
		return warnStyle.Render(err.Error())
	}
	defer drive.Close()

	left, right, err := drive.Speeds(ctx)
	if err != nil {
		return warnStyle.Render(err.Error())
	}
	return fmt.Sprintf("left %.1f  right %.1f %s", left, right, dimStyle.Render("(speed units)"))
}

func roleOf(port string, cfg level.Config) string {
	switch port {
	case cfg.Drive.Port:
		return fmt.Sprintf("wheels (L%d R%d)", cfg.Drive.LeftID, cfg.Drive.RightID)
	case cfg.Link.Port:
		return "sensor link"
	default:
		return ""
	}
}

func describeServos(found []feetech.FoundServo) string {
	parts := make([]string, 0, len(found))
	for _, s := range found {
		parts = append(parts, fmt.Sprintf("#%d %v", s.ID, s.Model))
	}
	return strings.Join(parts, ", ")
}

func portTable(rows [][]string) *table.Table {
	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tablePortStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableRoleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Port", "Role", "Servos").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			switch col {
			case 0:
				return tablePortStyle
			case 1:
				return tableRoleStyle
			default:
				return tableCellStyle
			}
		})
}
