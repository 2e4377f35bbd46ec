// Package syscall defines the numbered entry points a simulated user
// Program invokes through a proc.Syscalls handle, and a Dispatch
// function that maps a syscall number plus argument word to the matching
// call. Numbers for the file and process-image syscalls this kernel
// doesn't implement are reserved rather than reused, so the file
// subsystem can be added later without renumbering anything.
// set_signal_handler and alarm are not part of that historical enum;
// they are assigned the next two free numbers here as a documented
// supplement — see DESIGN.md.
package syscall

// Number identifies a syscall this kernel's trap dispatch recognizes.
// Unimplemented syscalls (pipe, exec, fstat, chdir, dup, open, write,
// mknod, unlink, link, mkdir, close, read) keep their numeric slot
// reserved so renumbering never has to happen if the file subsystem is
// added later, but Dispatch rejects them as unimplemented rather than
// pretending to support them.
type Number int

const (
	Fork Number = iota + 1
	Exit
	Wait
	Pipe
	Read
	Kill
	Exec
	Fstat
	Chdir
	Dup
	GetPID
	Sbrk
	Sleep
	Uptime
	Open
	Write
	Mknod
	Unlink
	Link
	Mkdir
	Close
	Yield
	SendSignal
	SetSignalHandler
	Alarm
)

// Name returns the syscall's original identifier, for logging and
// procdump-adjacent diagnostics.
func (n Number) Name() string {
	names := map[Number]string{
		Fork: "fork", Exit: "exit", Wait: "wait", Pipe: "pipe", Read: "read",
		Kill: "kill", Exec: "exec", Fstat: "fstat", Chdir: "chdir", Dup: "dup",
		GetPID: "getpid", Sbrk: "sbrk", Sleep: "sleep", Uptime: "uptime",
		Open: "open", Write: "write", Mknod: "mknod", Unlink: "unlink",
		Link: "link", Mkdir: "mkdir", Close: "close", Yield: "yield",
		SendSignal: "send_signal", SetSignalHandler: "set_signal_handler",
		Alarm: "alarm",
	}
	if name, ok := names[n]; ok {
		return name
	}
	return "unknown"
}
