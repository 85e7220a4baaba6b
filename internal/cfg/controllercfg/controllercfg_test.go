package controllercfg

import "testing"

func valid() Config {
	return Config{
		DrainSeconds:          10,
		ShutdownBudgetSeconds: 20,
		APIPort:               8080,
		AuthToken:             "tok",
		RegionsConfigPath:     "regions.yaml",
	}
}

func TestValidate_Valid(t *testing.T) {
	t.Parallel()
	c := valid()
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingAuthToken(t *testing.T) {
	t.Parallel()
	c := valid()
	c.AuthToken = ""
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for missing auth token")
	}
}

func TestValidate_ShutdownBudgetMustExceedDrain(t *testing.T) {
	t.Parallel()
	c := valid()
	c.ShutdownBudgetSeconds = c.DrainSeconds
	if err := c.Validate(); err == nil {
		t.Fatal("expected error when shutdown budget does not exceed drain")
	}
}

func TestValidate_PortOutOfRange(t *testing.T) {
	t.Parallel()
	c := valid()
	c.APIPort = 70000
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}
