package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

var (
	loggerOnce sync.Once
	logger     *log.Logger
)

// Logger is the process-wide JSON line logger. The HTTP access log and the
// audit trail both write through it so log shipping sees a single stream.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.New(os.Stdout, "", 0)
	})
	return logger
}

// LogRequest marshals one access-log entry as a JSON line.
func LogRequest(entry map[string]any) {
	data, err := json.Marshal(entry)
	if err != nil {
		Logger().Println(`{"level":"error","msg":"access log entry not serializable"}`)
		return
	}
	Logger().Println(string(data))
}
