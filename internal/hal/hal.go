// Package hal defines the bridge hardware abstraction contract: the data a
// caller hands to a vendor implementation, and the entry points that
// implementation must provide to create, update and delete Linux bridges.
//
// Every entry point is synchronous. An implementation must complete its side
// effect, or determine its answer, before returning. Callers serialise
// mutating calls against the same bridge.
package hal

import (
	"context"
	"fmt"
)

// HAL is implemented by a vendor to manage bridges on the gateway.
type HAL interface {
	// UpdateBridgeInfo applies op to the bridge described by details.
	// ifaceToUpdate names a single interface for a sync-style partial update
	// and is empty otherwise. typ classifies that interface; sync deletes use
	// IfaceOther. Re-creating an existing bridge and re-deleting an absent one
	// both succeed.
	UpdateBridgeInfo(ctx context.Context, env *Env, details *BridgeDetails, ifaceToUpdate string, op BridgeOperation, typ InterfaceType) error

	// CheckIfExists reports whether iface currently exists. It does not
	// mutate state.
	CheckIfExists(ctx context.Context, iface string) (bool, error)

	// CheckIfExistsInBridge reports whether iface is currently enslaved to
	// bridge. A missing interface or bridge reports false with no error.
	CheckIfExistsInBridge(ctx context.Context, iface, bridge string) (bool, error)

	// HandlePreConfigVendor runs OEM preparation for inst before the bridge is
	// mutated. An error aborts the pending bridge operation.
	HandlePreConfigVendor(ctx context.Context, env *Env, details *BridgeDetails, inst ConfigInstance) error

	// HandlePostConfigVendor runs OEM follow-up for inst after a successful
	// bridge mutation. An error does not roll the mutation back.
	HandlePostConfigVendor(ctx context.Context, env *Env, details *BridgeDetails, inst ConfigInstance) error

	// GetVendorIfaces returns vendor-specific interfaces available for bridge
	// composition. No interfaces is an empty list and a nil error.
	GetVendorIfaces(ctx context.Context, env *Env) (IfaceList, error)
}

// ValidateRequest checks the arguments of UpdateBridgeInfo at the boundary.
func ValidateRequest(details *BridgeDetails, ifaceToUpdate string, op BridgeOperation, typ InterfaceType) error {
	if err := details.Validate(); err != nil {
		return err
	}
	if !op.Valid() {
		return fmt.Errorf("%w: bridge operation %d", ErrOutOfRange, int(op))
	}
	if !typ.Valid() {
		return fmt.Errorf("%w: interface type %d", ErrOutOfRange, int(typ))
	}
	if ifaceToUpdate != "" {
		if err := ValidateIfaceName(ifaceToUpdate); err != nil {
			return fmt.Errorf("interface to update: %w", err)
		}
	}
	return nil
}
