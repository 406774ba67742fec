package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	coremission "github.com/example/orbita/internal/core/mission"
)

var shortIDPattern = regexp.MustCompile(`^\d+$`)

// validateMissionID checks an ID has the MISSION-NNN form.
// Returns an error with helpful message if the ID appears to be a short ID.
func validateMissionID(id string) error {
	if coremission.IsMissionID(id) {
		return nil
	}

	// Check if it looks like a short ID (just digits)
	if shortIDPattern.MatchString(id) {
		if n, err := strconv.Atoi(id); err == nil && n > 0 {
			return fmt.Errorf("invalid mission ID '%s'. Use full ID format: %s", id, coremission.GenerateMissionID(n-1))
		}
	}

	// Check if it's using wrong case
	if upper := strings.ToUpper(id); upper != id && coremission.IsMissionID(upper) {
		return fmt.Errorf("invalid mission ID '%s'. IDs are case-sensitive, use: %s", id, upper)
	}

	return fmt.Errorf("invalid mission ID '%s'. Expected format: MISSION-xxx", id)
}

// missionIDArg requires exactly n arguments, the first being a mission ID.
func missionIDArg(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return err
		}
		return validateMissionID(args[0])
	}
}
