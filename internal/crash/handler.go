package crash

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/smartlime/spam-restrictor-bot/internal/logger"
)

// RecoverWithStack logs a recovered panic with its stack trace. Use it deferred.
func RecoverWithStack(moduleName string) {
	if r := recover(); r != nil {
		reportPanic("PANIC", moduleName, r)
	}
}

// RecoverWithStackAndExit logs a recovered panic and exits with status 1 so the
// supervisor restarts the process.
func RecoverWithStackAndExit(moduleName string) {
	if r := recover(); r != nil {
		reportPanic("FATAL PANIC", moduleName, r)

		// let the rotating log flush
		time.Sleep(1 * time.Second)
		os.Exit(1)
	}
}

// SafeGoroutine runs fn in a goroutine that survives panics.
func SafeGoroutine(name string, fn func()) {
	go func() {
		defer RecoverWithStack(fmt.Sprintf("goroutine-%s", name))
		fn()
	}()
}

// SetupCrashHandler turns memory faults into recoverable panics.
func SetupCrashHandler() {
	debug.SetPanicOnFault(true)
}

func reportPanic(kind, moduleName string, r interface{}) {
	stack := debug.Stack()

	logger.Errorf("%s in %s: %v", kind, moduleName, r)
	logger.Errorf("Stack trace:\n%s", string(stack))

	// stderr too, container logs may not include the log file
	fmt.Fprintf(os.Stderr, "[%s] %s - %s: %v\n", kind, time.Now().Format("2006-01-02 15:04:05"), moduleName, r)
	fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", string(stack))

	logRuntimeInfo()
}

func logRuntimeInfo() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	info := fmt.Sprintf(`
Runtime Information:
- Go version: %s
- Number of CPUs: %d
- Number of goroutines: %d
- Heap allocated: %d KB
- Heap in use: %d KB
- Stack in use: %d KB
- Num GC: %d
`,
		runtime.Version(),
		runtime.NumCPU(),
		runtime.NumGoroutine(),
		m.HeapAlloc/1024,
		m.HeapInuse/1024,
		m.StackInuse/1024,
		m.NumGC,
	)

	logger.Error(info)
	fmt.Fprint(os.Stderr, info)
}
