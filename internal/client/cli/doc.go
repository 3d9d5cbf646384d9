// Package cli implements eventctl, the operator command line for eventdrop.
//
// Commands:
//
//	create-event <name>          open a new event (closes the active one)
//	close-event <id>             close an event and report its upload count
//	list-events                  list events, newest first
//	quota                        show storage usage
//	upload -g <guest> <files..>  send files to the active event as a guest
//
// Admin commands prompt for the password without echo when none is configured.
package cli
