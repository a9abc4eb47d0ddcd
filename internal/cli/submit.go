package cli

import (
	"github.com/spf13/cobra"
	"github.com/vk/livysubmit/internal/app"
	"github.com/vk/livysubmit/internal/config"
)

type submitFlags struct {
	attachID      int
	keepAlive     bool
	noWait        bool
	taskName      string
	outputFile    string
	sessionIDFile string

	files               []string
	pyFiles             []string
	driverCores         int
	driverMemory        string
	exeEnv              map[string]string
	conf                map[string]string
	numExecutors        int
	executorCores       int
	executorMemory      string
	dynamicMaxExecutors int
	dynamicMinExecutors int
	memoryOverhead      string
}

func newSubmitCommand(g *globalFlags, env Env) *cobra.Command {
	f := &submitFlags{}
	defaults := config.DefaultSessionSpec()

	cmd := &cobra.Command{
		Use:   "submit PYTHON_SCRIPT",
		Short: "Run a Python script in a new or existing session",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp(cmd.Context(), env)
			if err != nil {
				return err
			}
			opts := app.SubmitOptions{
				ScriptPath:    args[0],
				TaskName:      f.taskName,
				KeepAlive:     f.keepAlive,
				NoWait:        f.noWait,
				OutputFile:    f.outputFile,
				SessionIDFile: f.sessionIDFile,
				Overrides:     f.overrides(cmd.Flags().Changed),
			}
			if cmd.Flags().Changed("connect-existing-session") {
				if f.attachID < 0 {
					return usageError(errNegativeSessionID)
				}
				id := f.attachID
				opts.AttachID = &id
			}
			return a.Submit(cmd.Context(), opts)
		},
	}

	fl := cmd.Flags()
	fl.IntVarP(&f.attachID, "connect-existing-session", "c", 0, "Run in this existing session instead of starting one; implies --keep-session-alive")
	fl.BoolVarP(&f.keepAlive, "keep-session-alive", "k", false, "Do not delete the session afterwards")
	fl.BoolVarP(&f.noWait, "nowait", "n", false, "Return once the script is submitted; implies --keep-session-alive")
	fl.StringVar(&f.taskName, "task-name", "", "Session name suffix (default: the script's file name)")
	fl.StringVarP(&f.outputFile, "output", "o", "", "Write the driver output to this file")
	fl.StringVarP(&f.sessionIDFile, "write-session-id", "w", "", "Write the session id to this file")

	fl.StringSliceVar(&f.files, "files", nil, "Files to place in the executor working directory")
	fl.StringSliceVar(&f.pyFiles, "py-files", nil, "Files to place on the PYTHONPATH")
	fl.IntVar(&f.driverCores, "driver-cores", defaults.DriverCores, "Driver cores")
	fl.StringVar(&f.driverMemory, "driver-memory", defaults.DriverMemory, "Driver memory")
	fl.StringToStringVar(&f.exeEnv, "exe-env", nil, "Executor environment variables as KEY=VALUE")
	fl.StringToStringVar(&f.conf, "conf", nil, "Extra Spark configuration as KEY=VALUE")
	fl.IntVar(&f.numExecutors, "num-executors", defaults.NumExecutors, "Executors when dynamic allocation is off")
	fl.IntVar(&f.executorCores, "executor-cores", defaults.ExecutorCores, "Cores per executor")
	fl.StringVar(&f.executorMemory, "executor-memory", defaults.ExecutorMemory, "Memory per executor")
	fl.IntVar(&f.dynamicMaxExecutors, "dynamic-max-executors", defaults.DynamicMaxExecutors, "Upper bound for dynamic allocation")
	fl.IntVar(&f.dynamicMinExecutors, "dynamic-min-executors", defaults.DynamicMinExecutors, "Lower bound for dynamic allocation")
	fl.StringVar(&f.memoryOverhead, "spark-yarn-executor-memoryoverhead", "", "spark.yarn.executor.memoryOverhead in megabytes")
	return cmd
}

// overrides returns the settings the user set explicitly, so that flag
// defaults do not mask profile values.
func (f *submitFlags) overrides(changed func(name string) bool) *config.Profile {
	p := &config.Profile{Name: "command line"}
	intFlag := func(name string, v int) *int {
		if !changed(name) {
			return nil
		}
		return &v
	}
	stringFlag := func(name, v string) *string {
		if !changed(name) {
			return nil
		}
		return &v
	}

	p.DriverCores = intFlag("driver-cores", f.driverCores)
	p.DriverMemory = stringFlag("driver-memory", f.driverMemory)
	p.NumExecutors = intFlag("num-executors", f.numExecutors)
	p.ExecutorCores = intFlag("executor-cores", f.executorCores)
	p.ExecutorMemory = stringFlag("executor-memory", f.executorMemory)
	p.DynamicMaxExecutors = intFlag("dynamic-max-executors", f.dynamicMaxExecutors)
	p.DynamicMinExecutors = intFlag("dynamic-min-executors", f.dynamicMinExecutors)
	p.MemoryOverhead = stringFlag("spark-yarn-executor-memoryoverhead", f.memoryOverhead)
	if changed("exe-env") {
		p.ExecutorEnv = f.exeEnv
	}
	if changed("conf") {
		p.Conf = f.conf
	}
	if changed("files") {
		p.Files = f.files
	}
	if changed("py-files") {
		p.PyFiles = f.pyFiles
	}
	return p
}
