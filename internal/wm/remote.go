package wm

import "log"

// Remote command tokens accepted through the root-window mailbox
// property. Anything else is ignored.
const (
	cmdLast  = "last"
	cmdClose = "close"
	cmdQuit  = "quit"
)

// remoteCommand reads and executes the mailbox property. The command
// channel is how an external `stackwm <token>` invocation reaches a
// running manager, and how a termination signal is turned into an
// orderly shutdown.
func (m *Manager) remoteCommand() {
	cmd, err := m.dpy.GetPropString(m.root, m.atoms.Command)
	if err != nil {
		return
	}
	switch cmd {
	case cmdLast:
		if below := m.reg.below(); below != nil {
			m.raiseClient(below.Win)
		}
	case cmdClose:
		if head := m.reg.head(); head != nil {
			m.closeClient(head.Win)
		}
	case cmdQuit:
		log.Printf("quit command received")
		m.quit = true
	}
}
