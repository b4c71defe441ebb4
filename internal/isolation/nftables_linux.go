//go:build linux

package isolation

import (
	"fmt"
	"log/slog"

	"github.com/google/nftables"
	"github.com/google/nftables/expr"
	"golang.org/x/sys/unix"
)

// tableName is the bridge-family nftables table owned by bridgeutil.
const tableName = "bridgeutil"

// chainPrefix prefixes the per-bridge forward chain.
const chainPrefix = "iso-"

// NftablesController implements Controller with a bridge-family nftables
// table holding one forward chain per bridge.
type NftablesController struct {
	logger *slog.Logger
}

// NewNftablesController returns a new NftablesController.
func NewNftablesController(logger *slog.Logger) *NftablesController {
	return &NftablesController{logger: logger}
}

// Apply replaces the rules of the bridge's chain in a single batch.
func (c *NftablesController) Apply(bridge string, rules []PortRule) error {
	conn, err := nftables.New()
	if err != nil {
		return fmt.Errorf("isolation: apply %q: %w", bridge, err)
	}

	table := ensureTable(conn)
	chain := conn.AddChain(&nftables.Chain{
		Name:     chainName(bridge),
		Table:    table,
		Type:     nftables.ChainTypeFilter,
		Hooknum:  nftables.ChainHookForward,
		Priority: nftables.ChainPriorityFilter,
	})
	conn.FlushChain(chain)

	for _, r := range rules {
		conn.AddRule(&nftables.Rule{
			Table: table,
			Chain: chain,
			Exprs: ruleExprs(r),
		})
	}

	if err := conn.Flush(); err != nil {
		return fmt.Errorf("isolation: apply %q: %w", bridge, err)
	}

	c.logger.Debug("isolation rules applied",
		"component", "isolation",
		"bridge", bridge,
		"count", len(rules),
	)
	return nil
}

// Clear deletes the bridge's chain. A missing table or chain is success.
func (c *NftablesController) Clear(bridge string) error {
	conn, err := nftables.New()
	if err != nil {
		return fmt.Errorf("isolation: clear %q: %w", bridge, err)
	}

	chains, err := conn.ListChainsOfTableFamily(nftables.TableFamilyBridge)
	if err != nil {
		return fmt.Errorf("isolation: clear %q: list chains: %w", bridge, err)
	}

	name := chainName(bridge)
	for _, ch := range chains {
		if ch.Table.Name != tableName || ch.Name != name {
			continue
		}
		conn.FlushChain(ch)
		conn.DelChain(ch)
		if err := conn.Flush(); err != nil {
			return fmt.Errorf("isolation: clear %q: %w", bridge, err)
		}
		c.logger.Debug("isolation rules cleared",
			"component", "isolation",
			"bridge", bridge,
		)
		return nil
	}

	c.logger.Debug("isolation chain not found, nothing to clear",
		"component", "isolation",
		"bridge", bridge,
	)
	return nil
}

func ensureTable(conn *nftables.Conn) *nftables.Table {
	return conn.AddTable(&nftables.Table{
		Family: nftables.TableFamilyBridge,
		Name:   tableName,
	})
}

func chainName(bridge string) string {
	return chainPrefix + bridge
}

// ruleExprs builds: iifname "<in>" oifname "<out>" counter drop
func ruleExprs(r PortRule) []expr.Any {
	return []expr.Any{
		&expr.Meta{Key: expr.MetaKeyIIFNAME, Register: 1},
		&expr.Cmp{Op: expr.CmpOpEq, Register: 1, Data: ifaceNameBytes(r.In)},
		&expr.Meta{Key: expr.MetaKeyOIFNAME, Register: 1},
		&expr.Cmp{Op: expr.CmpOpEq, Register: 1, Data: ifaceNameBytes(r.Out)},
		&expr.Counter{},
		&expr.Verdict{Kind: expr.VerdictDrop},
	}
}

// ifaceNameBytes returns the interface name null-terminated, as nftables
// compares interface names.
func ifaceNameBytes(name string) []byte {
	buf := make([]byte, unix.IFNAMSIZ)
	n := copy(buf[:unix.IFNAMSIZ-1], name)
	return buf[:n+1]
}
