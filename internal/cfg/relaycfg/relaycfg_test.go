package relaycfg

import "testing"

func valid() Config {
	return Config{ControllerURL: "https://controller.internal", AuthToken: "tok", Region: "us-east"}
}

func TestValidate_Valid(t *testing.T) {
	t.Parallel()
	c := valid()
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingFields(t *testing.T) {
	t.Parallel()

	cases := []func(*Config){
		func(c *Config) { c.ControllerURL = "" },
		func(c *Config) { c.AuthToken = "" },
		func(c *Config) { c.Region = "" },
	}
	for _, mutate := range cases {
		c := valid()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("expected error for %+v", c)
		}
	}
}
