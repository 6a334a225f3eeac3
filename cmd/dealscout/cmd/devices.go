package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resaleops/dealscout/internal/store"
)

var (
	devicesDealClass string
	devicesGrade     string
	devicesHotOnly   bool
	devicesLimit     int
	devicesOutput    string
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List device records",
	RunE:  runDevicesList,
}

var devicesDeleteCmd = &cobra.Command{
	Use:   "delete <device-id>",
	Short: "Permanently delete a device record",
	Args:  cobra.ExactArgs(1),
	RunE:  runDevicesDelete,
}

func init() {
	devicesCmd.Flags().StringVar(&devicesDealClass, "deal-class", "", "filter by deal class")
	devicesCmd.Flags().StringVar(&devicesGrade, "grade", "", "filter by final grade")
	devicesCmd.Flags().BoolVar(&devicesHotOnly, "hot", false, "only hot-seller devices")
	devicesCmd.Flags().IntVar(&devicesLimit, "limit", 50, "max rows")
	devicesCmd.Flags().StringVar(&devicesOutput, "output", "table", "output format (table, json)")
	devicesCmd.AddCommand(devicesDeleteCmd)
	rootCmd.AddCommand(devicesCmd)
}

func runDevicesList(cobraCmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openStore(cobraCmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	q := &store.DeviceQuery{
		HotSellerOnly: devicesHotOnly,
		Limit:         devicesLimit,
	}
	if devicesDealClass != "" {
		q.DealClass = &devicesDealClass
	}
	if devicesGrade != "" {
		q.Grade = &devicesGrade
	}

	devices, total, err := s.ListDevices(cobraCmd.Context(), q)
	if err != nil {
		return fmt.Errorf("listing devices: %w", err)
	}

	if devicesOutput == "json" {
		return outputJSON(devices)
	}

	if err := printDevicesTable(devices); err != nil {
		return err
	}
	if total > len(devices) {
		fmt.Printf("Showing %d of %d devices.\n", len(devices), total)
	}
	return nil
}

func runDevicesDelete(cobraCmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openStore(cobraCmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeleteDevice(cobraCmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}

	fmt.Println("Deleted.")
	return nil
}
