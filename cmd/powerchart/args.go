package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// dropUnknownFlags removes flags the invoked command does not define, so a
// stray grouping flag such as -x leaves the grouping at day instead of failing
// the run. The command is resolved the way cobra does: a subcommand name is
// only recognised before the first positional argument. Everything after "--"
// is passed through untouched.
func dropUnknownFlags(root *cobra.Command, args []string) []string {
	cmd := root
	known := knownFlags(cmd)
	positional := false

	kept := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return append(kept, args[i:]...)
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			ok, wantsValue := lookupFlag(known, arg)
			if !ok {
				continue
			}
			kept = append(kept, arg)
			if wantsValue && i+1 < len(args) {
				i++
				kept = append(kept, args[i])
			}
		default:
			if !positional {
				if sub := subcommand(cmd, arg); sub != nil {
					cmd = sub
					known = knownFlags(cmd)
					kept = append(kept, arg)
					continue
				}
				positional = true
			}
			kept = append(kept, arg)
		}
	}

	return kept
}

// knownFlags returns the local flags of cmd plus the persistent flags of cmd
// and its parents
func knownFlags(cmd *cobra.Command) *pflag.FlagSet {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.AddFlagSet(cmd.Flags())
	for c := cmd; c != nil; c = c.Parent() {
		fs.AddFlagSet(c.PersistentFlags())
	}
	if fs.Lookup("help") == nil {
		fs.BoolP("help", "h", false, "help")
	}
	return fs
}

// lookupFlag reports whether arg names only known flags and whether the next
// argument is the value of the last one
func lookupFlag(fs *pflag.FlagSet, arg string) (ok, wantsValue bool) {
	if strings.HasPrefix(arg, "--") {
		name, _, hasValue := strings.Cut(arg[2:], "=")
		f := fs.Lookup(name)
		if f == nil {
			return false, false
		}
		return true, !hasValue && f.NoOptDefVal == ""
	}

	cluster := arg[1:]
	for i, r := range cluster {
		if r == '=' && i > 0 {
			return true, false
		}
		if len(string(r)) != 1 {
			return false, false
		}
		f := fs.ShorthandLookup(string(r))
		if f == nil {
			return false, false
		}
		if f.NoOptDefVal == "" {
			// The rest of the cluster, or the next argument, is the value
			return true, i+1 == len(cluster)
		}
	}
	return true, false
}

func subcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, sub := range cmd.Commands() {
		if sub.Name() == name || sub.HasAlias(name) {
			return sub
		}
	}
	return nil
}
