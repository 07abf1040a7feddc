package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/lianasoft/agency-crm/internal/audit"
	"github.com/lianasoft/agency-crm/internal/client"
	"github.com/lianasoft/agency-crm/internal/property"
	"github.com/lianasoft/agency-crm/internal/showing"
)

// printJSON marshals v as indented JSON and writes it to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printPropertyDetail prints a single property in text format.
func printPropertyDetail(p *property.Property) {
	fmt.Printf("%s  %s\n", p.ID, p.Address)
	fmt.Printf("  Type:     %s\n", p.Type)
	fmt.Printf("  Status:   %s\n", p.Status)
	fmt.Printf("  Price:    %s\n", formatPrice(p.Price))
	fmt.Printf("  Area:     %g m²\n", p.Area)
	if p.Rooms != nil {
		fmt.Printf("  Rooms:    %d\n", *p.Rooms)
	}
	if p.Floor != nil {
		if p.TotalFloors != nil {
			fmt.Printf("  Floor:    %d of %d\n", *p.Floor, *p.TotalFloors)
		} else {
			fmt.Printf("  Floor:    %d\n", *p.Floor)
		}
	}
	if p.District != "" {
		fmt.Printf("  District: %s\n", p.District)
	}
	if p.Owner != "" {
		fmt.Printf("  Owner:    %s %s\n", p.Owner, p.OwnerPhone)
	}
	if p.HasFurniture {
		fmt.Printf("  Furnished\n")
	}
	if p.Description != "" {
		fmt.Printf("  %s\n", p.Description)
	}
	if len(p.Photos) > 0 {
		fmt.Printf("  Photos:   %d\n", len(p.Photos))
	}
}

// printPropertyTable prints a list of properties as a formatted table.
func printPropertyTable(props []*property.Property) error {
	if len(props) == 0 {
		fmt.Println("No properties found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tADDRESS\tTYPE\tDISTRICT\tPRICE\tAREA\tSTATUS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t-------\t----\t--------\t-----\t----\t------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, p := range props {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%g\t%s\n",
			p.ID, truncate(p.Address, 40), p.Type, p.District,
			formatPrice(p.Price), p.Area, p.Status); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\nTotal: %d properties\n", len(props))
	return nil
}

// printClientTable prints a list of clients as a formatted table.
func printClientTable(clients []*client.Client) error {
	if len(clients) == 0 {
		fmt.Println("No clients found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tNAME\tPHONE\tTYPE\tCALLED\tSTATUS\tBUDGET"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}

	for _, c := range clients {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, truncate(c.Name, 30), c.Phone, c.Type, c.CallStatus, c.Status, c.Budget); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\nTotal: %d clients\n", len(clients))
	return nil
}

// printShowingTable prints a list of showings as a formatted table.
func printShowingTable(showings []*showing.Showing) error {
	if len(showings) == 0 {
		fmt.Println("No showings scheduled.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tDATE\tTIME\tPROPERTY\tNOTES"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}

	for _, s := range showings {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Date, s.Time, s.PropertyID, truncate(s.Notes, 40)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	return nil
}

// printActionTable prints audit entries as a formatted table.
func printActionTable(entries []*audit.Entry) error {
	if len(entries) == 0 {
		fmt.Println("No recorded activity.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "WHEN\tADMIN\tACTION\tDETAILS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}

	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Timestamp.Format("2006-01-02 15:04"), e.AdminUsername, e.Action, truncate(e.Details, 50)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	return nil
}

// formatPrice renders a price in euro with thousands separators.
func formatPrice(n int64) string {
	s := fmt.Sprintf("%d", n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return "€" + s
}

// truncate shortens s to max runes, appending an ellipsis if cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
