package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/chrissnell/flowerclock/pkg/config"
)

const tolerance = 0.000001

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite configuration file")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <flowerclock.yaml> -sqlite <flowerclock.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Configuration Comparison Test")
	fmt.Println("===========================")

	fmt.Printf("Loading YAML configuration: %s\n", *yamlFile)
	yamlConfig, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loading SQLite configuration: %s\n", *sqliteFile)
	sqliteProvider, err := config.NewSQLiteProvider(*sqliteFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating SQLite provider: %v\n", err)
		os.Exit(1)
	}
	defer sqliteProvider.Close()

	sqliteConfig, err := sqliteProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading SQLite config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nComparison Results:")
	fmt.Println("==================")

	ok := report("Title", yamlConfig.Title == sqliteConfig.Title)
	ok = report("Night band", compareNight(yamlConfig.Night, sqliteConfig.Night)) && ok
	ok = report("Render settings", yamlConfig.Render == sqliteConfig.Render) && ok

	fmt.Printf("\nGroups - YAML: %d, SQLite: %d\n", len(yamlConfig.Groups), len(sqliteConfig.Groups))
	if len(yamlConfig.Groups) != len(sqliteConfig.Groups) {
		ok = report("Group count", false) && ok
	} else {
		for i, g := range yamlConfig.Groups {
			ok = report("Group "+g.Name, compareGroups(g, sqliteConfig.Groups[i])) && ok
		}
	}

	if !ok {
		fmt.Println("\nConfigurations differ")
		os.Exit(1)
	}
	fmt.Println("\nTest completed!")
}

func report(what string, matches bool) bool {
	if matches {
		fmt.Printf("✓ %s matches\n", what)
	} else {
		fmt.Printf("✗ %s differs\n", what)
	}
	return matches
}

func compareNight(yaml, sqlite config.NightData) bool {
	if !approxEqual(yaml.StartHour, sqlite.StartHour) || !approxEqual(yaml.EndHour, sqlite.EndHour) {
		return false
	}
	if (yaml.Location == nil) != (sqlite.Location == nil) {
		return false
	}
	if yaml.Location == nil {
		return true
	}
	return approxEqual(yaml.Location.Latitude, sqlite.Location.Latitude) &&
		approxEqual(yaml.Location.Longitude, sqlite.Location.Longitude) &&
		yaml.Location.Date == sqlite.Location.Date &&
		yaml.Location.Timezone == sqlite.Location.Timezone
}

// compareGroups ignores IDs, which only exist once a group is stored
func compareGroups(yaml, sqlite config.GroupData) bool {
	if yaml.Name != sqlite.Name || yaml.Color != sqlite.Color || len(yaml.Observations) != len(sqlite.Observations) {
		return false
	}
	for i := range yaml.Observations {
		if !approxEqual(yaml.Observations[i], sqlite.Observations[i]) {
			return false
		}
	}
	return true
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}
