package observability

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

type alertRule struct {
	Alert       string            `yaml:"alert"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

type alertGroup struct {
	Name  string      `yaml:"name"`
	Rules []alertRule `yaml:"rules"`
}

type alertRuleFile struct {
	Groups []alertGroup `yaml:"groups"`
}

func TestListViewAlertRules(t *testing.T) {
	path := filepath.Join("..", "..", "deploy", "prometheus", "alerts", "listview.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read alert file: %v", err)
	}

	var rules alertRuleFile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		t.Fatalf("failed to unmarshal alert file: %v", err)
	}

	if len(rules.Groups) == 0 {
		t.Fatal("expected at least one alert group")
	}

	var listGroup *alertGroup
	for i := range rules.Groups {
		if rules.Groups[i].Name == "listview" {
			listGroup = &rules.Groups[i]
			break
		}
	}
	if listGroup == nil {
		t.Fatal("listview alert group missing")
	}

	expected := map[string]struct {
		severity string
		runbook  string
	}{
		"ListViewOptionFetchFailures": {severity: "warning", runbook: "docs/runbook-listview.md#option-fetch-failures"},
		"ListViewHighLatency":         {severity: "warning", runbook: "docs/runbook-listview.md#high-latency"},
		"ListViewServerErrors":        {severity: "critical", runbook: "docs/runbook-listview.md#server-errors"},
	}

	if len(listGroup.Rules) != len(expected) {
		t.Fatalf("expected %d rules, got %d", len(expected), len(listGroup.Rules))
	}

	for _, rule := range listGroup.Rules {
		want, ok := expected[rule.Alert]
		if !ok {
			t.Fatalf("unexpected rule %q", rule.Alert)
		}
		if rule.Labels["severity"] != want.severity {
			t.Fatalf("rule %s severity mismatch: %s", rule.Alert, rule.Labels["severity"])
		}
		if rule.Annotations["runbook"] != want.runbook {
			t.Fatalf("rule %s runbook mismatch: %s", rule.Alert, rule.Annotations["runbook"])
		}
		if rule.Annotations["summary"] == "" || rule.Annotations["description"] == "" {
			t.Fatalf("rule %s must include summary and description annotations", rule.Alert)
		}
		if rule.Expr == "" {
			t.Fatalf("rule %s must define an expression", rule.Alert)
		}
		if rule.For == "" {
			t.Fatalf("rule %s must define a hold duration", rule.Alert)
		}
	}
}
