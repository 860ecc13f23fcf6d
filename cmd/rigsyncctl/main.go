package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/dougsko/rigsync/pkg/client"
	"github.com/dougsko/rigsync/pkg/config"
	"github.com/dougsko/rigsync/pkg/storage"
)

var (
	configPath = pflag.StringP("config", "c", config.DefaultConfigPath(), "Configuration file path")
	gateway    = pflag.StringP("gateway", "g", "", "Gateway address host:port (default: cat host and port from config)")
	wsjtxAddr  = pflag.StringP("wsjtx", "w", "", "Broadcast address host:port for adif (default: wsjtx host and port from config)")
	clientID   = pflag.String("id", "rigsyncctl", "Client id sent with adif datagrams")
	failedOnly = pflag.Bool("failed", false, "contacts: only list contacts whose upload failed")
	callFilter = pflag.String("call", "", "contacts: only list contacts with this callsign")
)

func main() {
	pflag.Usage = showHelp
	pflag.Parse()

	args := pflag.Args()
	if len(args) == 0 {
		showHelp()
		return
	}

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	switch args[0] {
	case "status":
		status, err := client.NewGatewayClient(gatewayAddress()).GetStatus()
		if err != nil {
			return err
		}
		return printJSON(status)

	case "qsy":
		if len(args) != 3 {
			return fmt.Errorf("usage: qsy <freq-hz> <mode>")
		}
		freq, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("frequency must be a positive integer")
		}
		resp, err := client.NewGatewayClient(gatewayAddress()).QSY(freq, args[2])
		if err != nil {
			return err
		}
		return printJSON(resp)

	case "contacts":
		limit := 10
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return fmt.Errorf("limit must be a positive integer")
			}
			limit = n
		}
		contacts, err := client.NewGatewayClient(gatewayAddress()).GetContacts(storage.ContactQuery{
			Limit:      limit,
			Callsign:   *callFilter,
			FailedOnly: *failedOnly,
		})
		if err != nil {
			return err
		}
		for _, c := range contacts {
			state := "uploaded"
			if !c.Uploaded {
				state = "FAILED: " + c.UploadError
			}
			fmt.Printf("%s  %-10s %-5s %-6s %s\n", c.LoggedAt.Format("2006-01-02 15:04:05"), c.Callsign, c.Band, c.Mode, state)
		}
		return nil

	case "stats":
		stats, err := client.NewGatewayClient(gatewayAddress()).GetContactStats()
		if err != nil {
			return err
		}
		return printJSON(stats)

	case "adif":
		if len(args) != 2 {
			return fmt.Errorf("usage: adif <file>")
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[1], err)
		}
		addr := broadcastAddress()
		if err := client.SendLoggedADIF(addr, *clientID, string(data)); err != nil {
			return err
		}
		fmt.Printf("sent %d bytes of ADIF to %s\n", len(data), addr)
		return nil

	default:
		showHelp()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// loadConfig reads the config for address defaults; a missing file is fine
func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return nil
	}
	return cfg
}

func gatewayAddress() string {
	if *gateway != "" {
		return *gateway
	}
	if cfg := loadConfig(); cfg != nil {
		return cfg.CATAddress()
	}
	return "127.0.0.1:54321"
}

func broadcastAddress() string {
	if *wsjtxAddr != "" {
		return *wsjtxAddr
	}
	if cfg := loadConfig(); cfg != nil {
		return cfg.WSJTXAddress()
	}
	return "127.0.0.1:2237"
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func showHelp() {
	fmt.Println("rigsyncctl - rigsync control tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s [options] <command>\n", os.Args[0])
	fmt.Println()
	fmt.Println("Options:")
	pflag.PrintDefaults()
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  status                    Get gateway status")
	fmt.Println("  qsy <freq> <mode>         Tune the rig (mode: cw, phone, lsb, usb, digi, rtty)")
	fmt.Println("  contacts [limit]          List journalled contacts (--failed, --call)")
	fmt.Println("  stats                     Show contact journal totals")
	fmt.Println("  adif <file>               Send an ADIF record as a logged-adif datagram")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Printf("  %s status\n", os.Args[0])
	fmt.Printf("  %s qsy 14030000 cw\n", os.Args[0])
	fmt.Printf("  %s --failed contacts 20\n", os.Args[0])
	fmt.Printf("  %s -w 127.0.0.1:2237 adif contact.adi\n", os.Args[0])
	fmt.Printf("  curl http://127.0.0.1:54321/7074000/digi\n")
}
