// Package pipelines собирает встроенные цепочки стадий.
//
// Registry знает четыре pipeline: full, discovery-docs, compliance
// и dev-experience.
// Build создаёт цепочку и каталог артефактов под конкретный run;
// skip- и branch-предикаты навешиваются здесь же, при регистрации
// стадий.
package pipelines
