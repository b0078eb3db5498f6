/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/unikorn-cloud/core/pkg/options"
	"github.com/unikorn-cloud/objects/pkg/client"
	"github.com/unikorn-cloud/objects/pkg/constants"
	"github.com/unikorn-cloud/objects/pkg/workflow"

	cr "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// run opens a session and runs the workflow once, the session is owned
// and closed by the runner.
func run(ctx context.Context, clientOptions *client.Options, workflowOptions *workflow.Options) error {
	cli, err := client.New(clientOptions)
	if err != nil {
		return err
	}

	report, err := workflow.New(cli, workflowOptions).Run(ctx)

	fmt.Print(report)

	report.Log(log.FromContext(ctx).WithName("report"))

	return err
}

func main() {
	var options options.CoreOptions

	clientOptions := client.NewOptions()
	workflowOptions := workflow.NewOptions()

	options.AddFlags(pflag.CommandLine)
	clientOptions.AddFlags(pflag.CommandLine)
	workflowOptions.AddFlags(pflag.CommandLine)

	pflag.Parse()

	options.SetupLogging()

	logger := log.Log.WithName("init")
	logger.Info("workflow starting", "application", constants.Application, "version", constants.Version, "revision", constants.Revision, "baseURL", clientOptions.BaseURL)

	ctx := log.IntoContext(cr.SetupSignalHandler(), log.Log.WithName("workflow"))

	if err := run(ctx, clientOptions, workflowOptions); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
