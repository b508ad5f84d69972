// SPDX-License-Identifier: GPL-3.0-or-later

// Package common contains simple, common packages used by other packages.
package common
