package contacts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// OpKind is the kind of write a reconciliation step produces.
type OpKind int

const (
	OpInsert OpKind = iota + 1
	OpUpdate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// AddressOp is one planned write. Inserts and updates are both executed as an
// upsert by id; the distinction records whether the id was already stored.
type AddressOp struct {
	Kind    OpKind
	Address Address
}

// Plan is the ordered list of address writes for one aggregate upsert:
// upserts in desired order, then deletes in stored order.
type Plan struct {
	Ops []AddressOp
}

func (p Plan) Count(kind OpKind) int {
	n := 0
	for _, op := range p.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

func (p Plan) Empty() bool { return len(p.Ops) == 0 }

// AddressWriter receives the writes of a Plan, typically by queueing them on a batch.
type AddressWriter interface {
	UpsertAddress(ctx context.Context, address Address) error
	RemoveAddress(ctx context.Context, addressID uuid.UUID) error
}

// Apply hands every op to w in plan order and stops at the first error.
func (p Plan) Apply(ctx context.Context, w AddressWriter) error {
	for i, op := range p.Ops {
		var err error
		switch op.Kind {
		case OpInsert, OpUpdate:
			err = w.UpsertAddress(ctx, op.Address)
		case OpDelete:
			err = w.RemoveAddress(ctx, op.Address.ID)
		default:
			err = fmt.Errorf("unknown address op %v", op.Kind)
		}
		if err != nil {
			return fmt.Errorf("apply address op %d (%s %s): %w", i, op.Kind, op.Address.ID, err)
		}
	}
	return nil
}

// PlanAddresses diffs the desired addresses of contactID against existing.
//
// existing must hold every stored address whose id appears in desired plus every
// address currently owned by contactID. It is consumed: matched entries are removed
// and whatever is left afterwards is planned for deletion.
//
// An id that is stored under a different contact, or that repeats an earlier entry
// of desired, produces a field error at its index and no write; the remaining
// addresses are still planned. Every id therefore yields at most one op.
func PlanAddresses(contactID uuid.UUID, desired []Address, existing *AddressSet) (Plan, FieldErrors) {
	var (
		plan Plan
		errs FieldErrors
	)
	plan.Ops = make([]AddressOp, 0, len(desired)+existing.Len())
	seen := make(map[uuid.UUID]struct{}, len(desired))

	for i, want := range desired {
		if _, dup := seen[want.ID]; dup {
			errs = errs.Add(addressField(i, "id"), msgAddressIDRepeated)
			continue
		}
		seen[want.ID] = struct{}{}
		stored, ok := existing.Remove(want.ID)
		if !ok {
			plan.Ops = append(plan.Ops, AddressOp{
				Kind: OpInsert,
				Address: Address{
					ID:        want.ID,
					ContactID: contactID,
					Street:    want.Street,
					ZipCode:   want.ZipCode,
					City:      want.City,
				},
			})
			continue
		}
		if stored.ContactID != contactID {
			errs = errs.Add(addressField(i, "id"), msgAddressIDTaken)
			continue
		}
		stored.Street = want.Street
		stored.ZipCode = want.ZipCode
		stored.City = want.City
		plan.Ops = append(plan.Ops, AddressOp{Kind: OpUpdate, Address: stored})
	}

	for _, leftover := range existing.Remaining() {
		plan.Ops = append(plan.Ops, AddressOp{Kind: OpDelete, Address: leftover})
	}
	return plan, errs
}
