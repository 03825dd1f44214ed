package debug

// Config describes the configurable parameters for debugging.
type Config struct {
	// Port of the gops agent. Zero disables it.
	Port  int `env:"DEBUG_PORT,default=9999"`
	PProf PProfConfig
}

// PProfConfig configures the pprof HTTP server.
type PProfConfig struct {
	PProfPort            int  `env:"DEBUG_PPROF_PORT,default=9998"`
	EnablePProfDebugging bool `env:"DEBUG_PPROF_ENABLE,default=false"`
	// Bytes allocated between heap profile samples.
	MemProfileRate int `env:"DEBUG_PPROF_MEM_PROFILE_RATE,default=524288"`
}
