// Command earbud-sim is an interactive two-earbud console: it wires up
// a pair of topology.Topology/mirror.SM/linkpolicy.SM/va.SM instances and
// lets an operator drive rule events by hand from a REPL. Useful for
// exercising the scenarios in internal/simharness interactively instead
// of only from tests.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/tws-core/earbud-core/internal/corelog"
	"github.com/tws-core/earbud-core/pkg/coreconfig"
	"github.com/tws-core/earbud-core/pkg/goalengine"
	"github.com/tws-core/earbud-core/pkg/linkpolicy"
	"github.com/tws-core/earbud-core/pkg/mirror"
	"github.com/tws-core/earbud-core/pkg/ruleevent"
	"github.com/tws-core/earbud-core/pkg/topology"
	"github.com/tws-core/earbud-core/pkg/va"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var verbose bool

	root := &cobra.Command{
		Use:   "earbud-sim",
		Short: "Interactive two-earbud core-state-machine console",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a coreconfig YAML file")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "log every state-machine event to stderr")

	root.AddCommand(newRunCmd(&configPath, &verbose))
	root.AddCommand(newConfigTemplateCmd())
	return root
}

func newConfigTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config-template",
		Short: "Print the default coreconfig YAML to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := coreconfig.Template()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newRunCmd(configPath *string, verbose *bool) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start one earbud's console as primary or secondary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := coreconfig.Load(*configPath)
			if err != nil {
				return err
			}
			primary := strings.EqualFold(role, "primary")
			return runConsole(cfg, primary, *verbose)
		},
	}
	cmd.Flags().StringVar(&role, "role", "primary", "initial role: primary or secondary")
	return cmd
}

// earbud bundles the four core state machines for one simulated device.
type earbud struct {
	addr string
	top  *topology.Topology
	mir  *mirror.SM
	lp   *linkpolicy.SM
	va   *va.SM
}

type noopChains struct{}

func (noopChains) Apply(va.Action) {}

// simHandsetService stands in for the real BR/EDR paging stack: Page
// always succeeds after a short simulated radio delay.
type simHandsetService struct {
	proc *topology.ConnectHandsetProcedure
}

func (s *simHandsetService) DisableFindRoleScanning() {}
func (s *simHandsetService) EnableFindRoleScanning()  {}
func (s *simHandsetService) Page(addr string) error {
	go func() {
		time.Sleep(50 * time.Millisecond)
		s.proc.HandleReconnectInd()
	}()
	return nil
}
func (s *simHandsetService) RequestConnectionStop() error { return nil }
func (s *simHandsetService) ReissueReconnect() error      { return nil }

// simHandoverController stands in for the controller-level handover
// transport: every step succeeds immediately.
type simHandoverController struct{}

func (simHandoverController) NotifyRoleChangeClients(forced bool) error { return nil }
func (simHandoverController) CancelRoleChangeClients()                 {}
func (simHandoverController) PermitBT(allow bool) error                { return nil }
func (simHandoverController) DisconnectLEConnections() error           { return nil }
func (simHandoverController) RequestControllerHandover(ctx context.Context) error {
	return nil
}

// newGoalRunner builds the per-goal procedure table for one simulated
// earbud. primary fixes how its find-role goal resolves, standing in for
// the peer-superiority negotiation a real FindRole controller operation
// would run; every other goal either drives a real sub-procedure
// (connect-handset, dynamic-handover) or simulates the underlying radio
// action the teacher firmware would otherwise perform (enable/disable
// scanning, profile connect/disconnect), since this console has no real
// transport to exercise.
func newGoalRunner(addr string, primary bool, top **topology.Topology) topology.GoalRunner {
	return func(id int) goalengine.Procedure {
		switch id {
		case topology.GoalPairPeer:
			return goalengine.ProcedureFunc(func(ctx context.Context) error {
				(*top).RaiseEvents(ruleevent.Set(ruleevent.PeerPaired))
				return nil
			})
		case topology.GoalNoRoleFindRole:
			return goalengine.ProcedureFunc(func(ctx context.Context) error {
				if primary {
					(*top).RaiseEvents(ruleevent.Set(ruleevent.RoleSelectedPrimary))
				} else {
					(*top).RaiseEvents(ruleevent.Set(ruleevent.RoleSelectedSecondary))
				}
				return nil
			})
		case topology.GoalConnectHandset:
			svc := &simHandsetService{}
			proc := topology.NewConnectHandsetProcedure(svc, addr)
			svc.proc = proc
			return proc
		case topology.GoalDynamicHandover:
			return mirror.NewHandoverProcedure(simHandoverController{}, 0)
		default:
			// GoalBecomePrimary/Secondary/ActingPrimary, RoleSwitchToSecondary,
			// CancelFindRole, EnableConnectablePeer/DisableConnectablePeer,
			// PrimaryConnectPeerProfiles/PrimaryDisconnectPeerProfiles,
			// ReleasePeer, ConnectableHandset/LEConnectableHandset,
			// AllowHandsetConnect, DisconnectHandset/DisconnectLRUHandset,
			// InCaseWatchdog, NoRoleIdle and SystemStop have no lower-level
			// transport to drive in this console, so they simulate success
			// immediately.
			return goalengine.ProcedureFunc(func(ctx context.Context) error { return nil })
		}
	}
}

func newEarbud(addr string, primary bool, logger corelog.Logger, cfg coreconfig.CoreConfig) *earbud {
	lp := linkpolicy.New(addr, nil, logger)
	mir := mirror.New(addr, primary, mirror.Preconditions{
		RequestPeerActive: func(d time.Duration) { lp.ActivePeriod(d) },
	}, logger)

	var top *topology.Topology
	top = topology.New(newGoalRunner(addr, primary, &top), logger)
	top.SetHandsetKnown(true)
	_ = cfg

	return &earbud{
		addr: addr,
		top:  top,
		mir:  mir,
		lp:   lp,
		va:   va.New(noopChains{}, logger),
	}
}

func runConsole(cfg coreconfig.CoreConfig, primary bool, verbose bool) error {
	var logger corelog.Logger = corelog.NoopLogger{}
	if verbose {
		logger = corelog.NewSlogAdapter(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}

	addr := "AA:BB:CC:DD:EE:01"
	eb := newEarbud(addr, primary, logger, cfg)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      promptFor(primary),
		HistoryFile: "",
	})
	if err != nil {
		return fmt.Errorf("earbud-sim: open console: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(rl.Stdout(), "earbud-sim console. Type 'help' for commands.")

	for {
		line, err := rl.Readline()
		if err != nil {
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd := strings.ToLower(fields[0])

		switch cmd {
		case "help", "?":
			printHelp(rl)
		case "quit", "exit", "q":
			return nil
		case "status":
			printStatus(rl, eb)
		case "peer-pair":
			eb.top.RaiseEvents(ruleevent.Set(ruleevent.PeerPaired))
		case "peer-lost":
			eb.top.RaiseEvents(ruleevent.Set(ruleevent.PeerLinkloss))
		case "in-case":
			eb.top.RaiseEvents(ruleevent.Set(ruleevent.InCase))
		case "out-case":
			eb.top.RaiseEvents(ruleevent.Set(ruleevent.OutCase))
		case "acl-connect":
			eb.mir.SetTarget(mirror.TargetACLConnected)
			eb.mir.ConfirmConnected()
		case "hfp-call":
			eb.mir.SetTarget(mirror.TargetESCOConnected)
			eb.mir.ConfirmConnected()
		case "hfp-end":
			eb.mir.SetTarget(mirror.TargetACLConnected)
			eb.mir.ConfirmConnected()
		case "wuw-start":
			eb.va.HandleEvent(va.EventWUWDetectStart)
		case "wuw-detected":
			eb.va.HandleEvent(va.EventWUWDetected)
		case "wuw-ignore":
			eb.va.HandleEvent(va.EventWUWIgnoreDetected)
		case "stop":
			eb.top.Stop()
		default:
			fmt.Fprintf(rl.Stdout(), "unknown command: %s (type 'help')\n", cmd)
		}
	}
}

func promptFor(primary bool) string {
	if primary {
		return "earbud(primary)> "
	}
	return "earbud(secondary)> "
}

func printHelp(rl *readline.Instance) {
	fmt.Fprint(rl.Stdout(), `
Commands:
  peer-pair      raise PEER_PAIRED
  peer-lost      raise PEER_LINKLOSS
  in-case        raise IN_CASE
  out-case       raise OUT_CASE
  acl-connect    drive the mirror SM to ACL_CONNECTED
  hfp-call       drive the mirror SM to ESCO_CONNECTED
  hfp-end        drive the mirror SM back to ACL_CONNECTED
  wuw-start      drive the VA SM into wuw-detecting
  wuw-detected   drive the VA SM into wuw-detected
  wuw-ignore     drive the VA SM back to wuw-detecting
  stop           run the topology stop script
  status         print the current role/state snapshot
  quit           exit
`)
}

func printStatus(rl *readline.Instance, eb *earbud) {
	fmt.Fprintf(rl.Stdout(), "role=%v mirror=%v linkpolicy=%v va=%v\n",
		eb.top.GetRole(), eb.mir.State(), eb.lp.State(), eb.va.State())
}
