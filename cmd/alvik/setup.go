package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"

	"github.com/gwillem/alvik/pkg/robot"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// maxServoID bounds the bus scan.
const maxServoID = 10

type SetupCommand struct{}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Alvik Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━"))
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ports := listPorts()
	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		fmt.Println("Make sure the robot is connected and powered on.")
		os.Exit(1)
	}

	// Step 1: wheel servos
	fmt.Println(subHeaderStyle.Render("━━━ Wheels ━━━"))
	fmt.Println()
	fmt.Println("Scanning for servo buses...")
	buses := findBuses(ports)
	if len(buses) == 0 {
		fmt.Println("No feetech servos found.")
		os.Exit(1)
	}
	bus := chooseBus(buses)
	identifyWheels(bus, &cfg.Drive)

	// Step 2: sensor link
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Sensor link ━━━"))
	fmt.Println()
	cfg.Link.Port = chooseLinkPort(ports, cfg.Drive.Port)

	if err := robot.SaveFile(opts.Config, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("  Wheels: %s (left %d, right %d)\n", cfg.Drive.Port, cfg.Drive.LeftID, cfg.Drive.RightID)
	fmt.Printf("  Link:   %s\n", cfg.Link.Port)
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Pick a level with: " + headerStyle.Render("alvik menu"))

	return nil
}

func listPorts() []string {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Printf("Error listing ports: %v\n", err)
		return nil
	}
	var out []string
	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}
		out = append(out, port)
	}
	return out
}

type busInfo struct {
	port   string
	servos []feetech.FoundServo
}

func openBus(port string) (*feetech.Bus, error) {
	return feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
}

func scanBus(port string) ([]feetech.FoundServo, error) {
	bus, err := openBus(port)
	if err != nil {
		return nil, err
	}
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return bus.Scan(ctx, 1, maxServoID)
}

// findBuses returns the ports with at least two servos.
func findBuses(ports []string) []busInfo {
	var buses []busInfo
	for _, port := range ports {
		servos, err := scanBus(port)
		if err != nil || len(servos) < 2 {
			continue
		}
		fmt.Printf("  Found %d servos on %s\n", len(servos), port)
		buses = append(buses, busInfo{port: port, servos: servos})
	}
	return buses
}

func chooseBus(buses []busInfo) busInfo {
	if len(buses) == 1 {
		return buses[0]
	}
	var options []huh.Option[int]
	for i, b := range buses {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%d servos)", b.port, len(b.servos)), i))
	}
	var idx int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Which bus drives the wheels?").
				Options(options...).
				Value(&idx),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	return buses[idx]
}

// identifyWheels spins each servo briefly and asks which wheel moved.
func identifyWheels(info busInfo, drive *robot.DriveConfig) {
	bus, err := openBus(info.port)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening bus: %v\n", err)
		os.Exit(1)
	}
	defer bus.Close()

	ctx := context.Background()
	drive.Port = info.port
	drive.LeftID, drive.RightID = 0, 0

	for _, s := range info.servos {
		if drive.LeftID != 0 && drive.RightID != 0 {
			break
		}
		servo := feetech.NewServo(bus, s.ID, s.Model)
		if err := servo.Enable(ctx); err != nil {
			fmt.Printf("  Error enabling servo %d: %v\n", s.ID, err)
			continue
		}

		fmt.Printf("\n  Spinning servo %d forward...\n", s.ID)
		servo.SetVelocity(ctx, 400)
		time.Sleep(600 * time.Millisecond)
		servo.SetVelocity(ctx, 0)
		servo.Disable(ctx)

		var options []huh.Option[string]
		if drive.LeftID == 0 {
			options = append(options, huh.NewOption("Left wheel", string(robot.LeftWheel)))
		}
		if drive.RightID == 0 {
			options = append(options, huh.NewOption("Right wheel", string(robot.RightWheel)))
		}
		options = append(options, huh.NewOption("Skip this servo", "skip"))

		var role string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title(fmt.Sprintf("Which wheel is servo %d?", s.ID)).
					Description("The wheel that just turned").
					Options(options...).
					Value(&role),
			),
		)
		if err := form.Run(); err != nil {
			fmt.Println()
			os.Exit(0)
		}

		switch robot.WheelName(role) {
		case robot.LeftWheel:
			drive.LeftID = s.ID
			drive.Reverse = !askYesNo("Did the robot roll forward?")
		case robot.RightWheel:
			drive.RightID = s.ID
		}
	}

	if drive.LeftID == 0 || drive.RightID == 0 {
		fmt.Println("Both wheels are required.")
		os.Exit(1)
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("Wheels identified: left %d, right %d", drive.LeftID, drive.RightID)))
}

func chooseLinkPort(ports []string, drivePort string) string {
	var options []huh.Option[string]
	for _, p := range ports {
		if p == drivePort {
			continue
		}
		options = append(options, huh.NewOption(p, p))
	}
	if len(options) == 0 {
		fmt.Println("No free serial port left for the sensor link.")
		os.Exit(1)
	}

	port := options[0].Value
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which port carries the sensor telemetry?").
				Options(options...).
				Value(&port),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	return port
}

func askYesNo(question string) bool {
	answer := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes").
				Negative("No").
				Value(&answer),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	return answer
}
