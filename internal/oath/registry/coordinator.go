package registry

import (
	"time"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/pkg/signal"
)

// pendingOp is the single in-flight request of a credential.
type pendingOp struct {
	seq            uint64
	result         *signal.Connection
	touch          *signal.Connection
	notificationID uint32
}

type codeCallback func(code string, validUntil time.Time, errMsg string)

// cancelPending drops the subscriptions of the current operation so a late
// result can no longer reach its callback.
func (c *Credential) cancelPending() {
	op := c.pending
	if op == nil {
		return
	}
	c.pending = nil

	op.result.Disconnect()
	op.touch.Disconnect()
	if op.notificationID != 0 {
		c.owner.executor.CloseTouchNotification(c.owner.ctx, op.notificationID)
		op.notificationID = 0
	}
}

func (c *Credential) startOp() *pendingOp {
	c.cancelPending()
	c.opSeq++
	op := &pendingOp{seq: c.opSeq}
	c.pending = op
	return op
}

// finish tears op down and reports whether it was still the current one.
func (c *Credential) finish(op *pendingOp) bool {
	if c.pending != op {
		return false
	}
	c.cancelPending()
	return true
}

func (c *Credential) generateAndAct(needsTouchUI bool, onResult codeCallback) {
	op := c.startOp()
	sig := c.owner.backend.Signals()
	deviceID, name := c.record.DeviceID, c.record.Name

	if needsTouchUI && c.record.RequiresTouch {
		op.touch = sig.TouchRequired.Connect(func(id string) {
			if id != deviceID || c.pending != op {
				return
			}
			op.touch.Disconnect()

			op.notificationID = c.owner.executor.ShowTouchNotification(c.owner.ctx, name, c.deviceModel())
		})
	}

	op.result = sig.CodeGenerated.Connect(func(res entity.CodeResult) {
		if res.DeviceID != deviceID || res.CredentialName != name {
			return
		}
		if !c.finish(op) {
			return
		}
		onResult(res.Code, res.ValidUntil, res.Err)
	})

	c.owner.backend.GenerateCode(deviceID, name)
}

func (c *Credential) deleteAndReport(onResult func(errMsg string)) {
	op := c.startOp()
	deviceID, name := c.record.DeviceID, c.record.Name

	op.result = c.owner.backend.Signals().CredentialDeleted.Connect(func(res entity.DeleteResult) {
		if res.DeviceID != deviceID || res.CredentialName != name {
			return
		}
		if !c.finish(op) {
			return
		}
		onResult(res.Err)
	})

	c.owner.backend.DeleteCredential(deviceID, name)
}
