/*
Package packages reconciles the packages the engine can see on disk with the ones it
has installed.

InstallNew installs every available package whose name is not installed yet, in the
order the engine lists them. It never uninstalls: the engine needs the package files
present to uninstall, so removing a package file and reconciling cannot drop the
installed copy. Use UninstallAll to start over.
*/
package packages

import (
	"fmt"

	"github.com/bastiangx/wordbridge/internal/utils"
	"github.com/bastiangx/wordbridge/pkg/engine"
	"github.com/charmbracelet/log"
)

// MaxPathLength bounds package name comparison.
const MaxPathLength = 260

// Synchronizer drives package commands on an engine.
type Synchronizer struct {
	eng    engine.Commander
	logger *log.Logger
}

// New returns a synchronizer issuing commands through eng.
func New(eng engine.Commander, logger *log.Logger) *Synchronizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Synchronizer{eng: eng, logger: logger}
}

// release hands a list back to the engine.
func (s *Synchronizer) release(alloc engine.Allocation) {
	if !alloc.Allocation().Held() {
		return
	}
	if r := s.eng.ReleaseAllocation(alloc); r.Failed() {
		s.logger.Warnf("Failed to release package list: %s", r)
	}
}

// InstallNew installs the available packages that are not installed.
//
// A failed available-package fetch means there are no packages and is not an error.
// A failed installed-package fetch is returned as is: without it no install or skip
// decision is safe. The first failed install aborts the run; packages installed
// before it stay installed.
func (s *Synchronizer) InstallNew() error {
	var available engine.PackageList
	if r := s.eng.RunCommand(engine.CmdPackageGetAvailable, &available, nil); r.Failed() {
		s.logger.Debug("No packages available", "result", r)
		return nil
	}
	defer s.release(&available)

	var installed engine.PackageList
	if err := engine.Check(engine.CmdPackageGetInstalled,
		s.eng.RunCommand(engine.CmdPackageGetInstalled, &installed, nil)); err != nil {
		return fmt.Errorf("failed to list installed packages: %w", err)
	}
	defer s.release(&installed)

	for _, pkg := range available.Packages {
		if isInstalled(pkg.Name, installed.Packages) {
			continue
		}
		s.logger.Debugf("Installing package: %s", pkg.Name)
		var id engine.PackageID
		if err := engine.Check(engine.CmdPackageInstall,
			s.eng.RunCommand(engine.CmdPackageInstall, pkg.Name, &id)); err != nil {
			s.logger.Warnf("Failed to install package: %s", pkg.Name)
			return fmt.Errorf("failed to install package %q: %w", pkg.Name, err)
		}
		s.logger.Debugf("Installed package: %s (id %d)", pkg.Name, id)
	}
	return nil
}

func isInstalled(name string, installed []engine.Package) bool {
	for _, p := range installed {
		if utils.BoundedEqual(name, p.Name, MaxPathLength) {
			return true
		}
	}
	return false
}

// UninstallAll uninstalls every installed package by id, stopping at the first
// failure. Packages after the failing one stay installed.
func (s *Synchronizer) UninstallAll() error {
	var installed engine.PackageList
	if err := engine.Check(engine.CmdPackageGetInstalled,
		s.eng.RunCommand(engine.CmdPackageGetInstalled, &installed, nil)); err != nil {
		return fmt.Errorf("failed to list installed packages: %w", err)
	}
	defer s.release(&installed)

	for _, pkg := range installed.Packages {
		s.logger.Debugf("Uninstalling package: %s", pkg.Name)
		if err := engine.Check(engine.CmdPackageUninstall,
			s.eng.RunCommand(engine.CmdPackageUninstall, pkg.ID, nil)); err != nil {
			return fmt.Errorf("failed to uninstall package %q: %w", pkg.Name, err)
		}
	}
	return nil
}

// Available lists the packages the engine found.
func (s *Synchronizer) Available() ([]engine.Package, error) {
	return s.list(engine.CmdPackageGetAvailable)
}

// Installed lists the installed packages.
func (s *Synchronizer) Installed() ([]engine.Package, error) {
	return s.list(engine.CmdPackageGetInstalled)
}

func (s *Synchronizer) list(cmd engine.Command) ([]engine.Package, error) {
	var list engine.PackageList
	if err := engine.Check(cmd, s.eng.RunCommand(cmd, &list, nil)); err != nil {
		return nil, err
	}
	defer s.release(&list)
	return append([]engine.Package(nil), list.Packages...), nil
}

// Components lists the components of installed packages, only loaded ones if asked.
func (s *Synchronizer) Components(loadedOnly bool) ([]engine.Component, error) {
	cmd := engine.CmdComponentGetAvailable
	if loadedOnly {
		cmd = engine.CmdComponentGetLoaded
	}
	var list engine.ComponentList
	if err := engine.Check(cmd, s.eng.RunCommand(cmd, &list, nil)); err != nil {
		return nil, err
	}
	defer s.release(&list)
	return append([]engine.Component(nil), list.Components...), nil
}
